package bidtransformer

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Transformer applies one Config. It holds no mutable state, so a single instance may be shared
// across goroutines.
type Transformer struct {
	multiplier decimal.Decimal
	divisor    decimal.Decimal
	precision  int32
	rounding   RoundingType
	floor      decimal.Decimal
	buckets    []bucket
}

type bucket struct {
	max  decimal.Decimal
	step decimal.Decimal
}

// New builds a Transformer, rejecting configs which would produce meaningless prices.
func New(cfg Config) (*Transformer, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	rounding, _ := ParseRoundingType(string(cfg.RoundingType))

	t := &Transformer{
		multiplier: decimal.NewFromInt(cfg.InputCentsMultiplier),
		divisor:    decimal.NewFromInt(cfg.OutputCentsDivisor),
		precision:  cfg.OutputPrecision,
		rounding:   rounding,
		floor:      decimal.NewFromFloat(cfg.Floor),
		buckets:    make([]bucket, 0, len(cfg.Buckets)),
	}
	for _, b := range cfg.Buckets {
		t.buckets = append(t.buckets, bucket{
			max:  decimal.NewFromFloat(b.Max),
			step: decimal.NewFromFloat(b.Step),
		})
	}
	return t, nil
}

// Apply returns the transformed price formatted with the configured output precision.
func (t *Transformer) Apply(raw float64) string {
	return t.transform(raw).StringFixed(t.precision)
}

// ApplyNumber returns the transformed price as a number, rounded to the configured output precision.
func (t *Transformer) ApplyNumber(raw float64) float64 {
	f, _ := t.transform(raw).Round(t.precision).Float64()
	return f
}

func (t *Transformer) transform(raw float64) decimal.Decimal {
	value := decimal.NewFromFloat(raw).Mul(t.multiplier)

	if value.LessThan(t.floor) {
		value = t.floor
	} else if len(t.buckets) > 0 {
		value = t.bucketize(value)
	}

	return value.Div(t.divisor)
}

func (t *Transformer) bucketize(value decimal.Decimal) decimal.Decimal {
	for _, b := range t.buckets {
		if value.LessThan(b.max) {
			return t.round(value, b)
		}
	}
	return t.buckets[len(t.buckets)-1].max
}

func (t *Transformer) round(value decimal.Decimal, b bucket) decimal.Decimal {
	switch t.rounding {
	case RoundingCeil:
		rounded := value.Div(b.step).Ceil().Mul(b.step)
		if rounded.GreaterThan(b.max) {
			return b.max
		}
		return rounded
	case RoundingNone:
		return value
	default:
		return value.Div(b.step).Floor().Mul(b.step)
	}
}
