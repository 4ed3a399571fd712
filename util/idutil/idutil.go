package idutil

import (
	"strconv"
	"sync/atomic"

	"github.com/gofrs/uuid"
)

// IDGenerator produces correlation ids for outbound requests.
type IDGenerator interface {
	Generate() string
}

// CounterGenerator yields "_" followed by a base-36 counter. Ids are unique for the lifetime of the
// generator and safe to request from many goroutines.
type CounterGenerator struct {
	next atomic.Uint64
}

func (g *CounterGenerator) Generate() string {
	return "_" + strconv.FormatUint(g.next.Add(1), 36)
}

var processGenerator = &CounterGenerator{}

// ProcessGenerator returns the generator shared by every adapter in the process.
func ProcessGenerator() IDGenerator {
	return processGenerator
}

// UUIDGenerator produces opaque ids for auction sessions and render registrations.
type UUIDGenerator interface {
	Generate() (string, error)
}

type UUIDRandomGenerator struct{}

func (UUIDRandomGenerator) Generate() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
