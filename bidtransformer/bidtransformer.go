// Package bidtransformer converts raw bid prices into the values used for ad server targeting
// and for direct price reporting.
package bidtransformer

import (
	"fmt"
	"strings"
)

// RoundingType selects how a price is snapped to a bucket step.
type RoundingType string

const (
	RoundingFloor RoundingType = "FLOOR"
	RoundingCeil  RoundingType = "CEIL"
	RoundingNone  RoundingType = "NONE"
)

// Bucket is one granularity range. Prices under Max are rounded to a multiple of Step.
type Bucket struct {
	Max  float64 `mapstructure:"max" json:"max"`
	Step float64 `mapstructure:"step" json:"step"`
}

// Config defines one transform. Values are expressed in cents after InputCentsMultiplier is applied.
type Config struct {
	InputCentsMultiplier int64        `mapstructure:"input_cents_multiplier" json:"inputCentsMultiplier"`
	OutputCentsDivisor   int64        `mapstructure:"output_cents_divisor" json:"outputCentsDivisor"`
	OutputPrecision      int32        `mapstructure:"output_precision" json:"outputPrecision"`
	RoundingType         RoundingType `mapstructure:"rounding_type" json:"roundingType"`
	Floor                float64      `mapstructure:"floor" json:"floor"`
	Buckets              []Bucket     `mapstructure:"buckets" json:"buckets,omitempty"`
}

// DefaultTargetingConfig buckets prices for line items: 5 cent steps up to $20, then 1 dollar steps up to $50.
func DefaultTargetingConfig() Config {
	return Config{
		InputCentsMultiplier: 100,
		OutputCentsDivisor:   1,
		OutputPrecision:      0,
		RoundingType:         RoundingFloor,
		Floor:                0,
		Buckets: []Bucket{
			{Max: 2000, Step: 5},
			{Max: 5000, Step: 100},
		},
	}
}

// DefaultPriceConfig reports the raw price in cents without bucketing.
func DefaultPriceConfig() Config {
	return Config{
		InputCentsMultiplier: 100,
		OutputCentsDivisor:   1,
		OutputPrecision:      0,
		RoundingType:         RoundingNone,
	}
}

// Validate reports every problem with the config.
func (cfg *Config) Validate() []error {
	var errs []error
	if cfg.InputCentsMultiplier <= 0 {
		errs = append(errs, fmt.Errorf("bid transformer input_cents_multiplier must be positive, got %d", cfg.InputCentsMultiplier))
	}
	if cfg.OutputCentsDivisor <= 0 {
		errs = append(errs, fmt.Errorf("bid transformer output_cents_divisor must be positive, got %d", cfg.OutputCentsDivisor))
	}
	if cfg.OutputPrecision < 0 {
		errs = append(errs, fmt.Errorf("bid transformer output_precision must not be negative, got %d", cfg.OutputPrecision))
	}
	if _, err := ParseRoundingType(string(cfg.RoundingType)); err != nil {
		errs = append(errs, err)
	}
	if cfg.Floor < 0 {
		errs = append(errs, fmt.Errorf("bid transformer floor must not be negative, got %v", cfg.Floor))
	}

	prevMax := 0.0
	for i, bucket := range cfg.Buckets {
		if bucket.Step <= 0 {
			errs = append(errs, fmt.Errorf("bid transformer bucket %d has a non-positive step %v", i, bucket.Step))
		}
		if bucket.Max <= prevMax {
			errs = append(errs, fmt.Errorf("bid transformer bucket %d max %v must be greater than %v", i, bucket.Max, prevMax))
		}
		prevMax = bucket.Max
	}
	return errs
}

// ParseRoundingType accepts the rounding names case-insensitively. An empty value means FLOOR.
func ParseRoundingType(s string) (RoundingType, error) {
	switch RoundingType(strings.ToUpper(s)) {
	case "", RoundingFloor:
		return RoundingFloor, nil
	case RoundingCeil:
		return RoundingCeil, nil
	case RoundingNone:
		return RoundingNone, nil
	default:
		return "", fmt.Errorf("invalid bid transformer rounding_type: %s", s)
	}
}
