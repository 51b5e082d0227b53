package cache

import (
	"fmt"
	"math"
	"math/rand"
)

// Defaults applied when switch-policy or config fields are omitted.
const (
	DefaultMaxSize   = 4
	DefaultCleanSize = 1

	DefaultLearningRate    = 0.3
	DefaultQualityWeight   = 0.8
	DefaultRecencyWeight   = 0.15
	DefaultFrequencyWeight = 0.05

	// weightTolerance is the floating slack allowed on the weight sum.
	weightTolerance = 1e-6
)

// PolicyConfig selects a policy kind and its parameters. The learning rate
// and weights only apply to the quality-score kind.
type PolicyConfig struct {
	Kind      Kind
	MaxSize   int
	CleanSize int

	LearningRate    float64
	QualityWeight   float64
	RecencyWeight   float64
	FrequencyWeight float64
}

// DefaultPolicyConfig returns the default configuration for kind.
func DefaultPolicyConfig(kind Kind) PolicyConfig {
	return PolicyConfig{
		Kind:            kind,
		MaxSize:         DefaultMaxSize,
		CleanSize:       DefaultCleanSize,
		LearningRate:    DefaultLearningRate,
		QualityWeight:   DefaultQualityWeight,
		RecencyWeight:   DefaultRecencyWeight,
		FrequencyWeight: DefaultFrequencyWeight,
	}
}

// Validate checks the configuration and returns a *ConfigurationError
// naming the first offending field.
func (c PolicyConfig) Validate() error {
	switch c.Kind {
	case KindLRU, KindLFU, KindFIFO, KindRandom, KindQuality:
	default:
		return &UnknownPolicyError{Name: string(c.Kind)}
	}
	if c.MaxSize <= 0 {
		return &ConfigurationError{Field: "maxsize", Reason: fmt.Sprintf("must be > 0, got %d", c.MaxSize)}
	}
	if c.CleanSize <= 0 || c.CleanSize > c.MaxSize {
		return &ConfigurationError{
			Field:  "clean_size",
			Reason: fmt.Sprintf("must be in (0, maxsize=%d], got %d", c.MaxSize, c.CleanSize),
		}
	}
	if c.Kind != KindQuality {
		return nil
	}

	if c.LearningRate < 0 || c.LearningRate > 1 {
		return &ConfigurationError{Field: "learning_rate", Reason: fmt.Sprintf("must be in [0,1], got %g", c.LearningRate)}
	}
	weights := []struct {
		field string
		value float64
	}{
		{"quality_weight", c.QualityWeight},
		{"recency_weight", c.RecencyWeight},
		{"frequency_weight", c.FrequencyWeight},
	}
	sum := 0.0
	for _, w := range weights {
		if w.value < 0 || w.value > 1 {
			return &ConfigurationError{Field: w.field, Reason: fmt.Sprintf("must be in [0,1], got %g", w.value)}
		}
		sum += w.value
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return &ConfigurationError{
			Field:  "quality_weight",
			Reason: fmt.Sprintf("quality, recency, and frequency weights must sum to 1.0, got %g", sum),
		}
	}
	return nil
}

// newPolicy builds the policy for this configuration. The configuration
// must already be validated.
func (c PolicyConfig) newPolicy(rng *rand.Rand) Policy {
	switch c.Kind {
	case KindLRU:
		return &lruPolicy{}
	case KindLFU:
		return &lfuPolicy{}
	case KindFIFO:
		return &fifoPolicy{}
	case KindRandom:
		return &rrPolicy{rng: rng}
	case KindQuality:
		return &qualityPolicy{
			learningRate:    c.LearningRate,
			qualityWeight:   c.QualityWeight,
			recencyWeight:   c.RecencyWeight,
			frequencyWeight: c.FrequencyWeight,
		}
	default:
		panic(fmt.Sprintf("cache: unvalidated policy kind %q", c.Kind))
	}
}
