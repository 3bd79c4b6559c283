package rl

import (
	"errors"
	"fmt"
	"runtime"
)

var (
	ErrInvalidConfig = errors.New("invalid training config")
	ErrNoEpisodes    = errors.New("number of episodes must be positive")
)

type Config struct {
	// Episodes is the number of training episodes played per lineup.
	Episodes int
	// Interval is the number of episodes between two checkpoints.
	Interval int
	// EvaluationEpisodes is the number of greedy games per empirical evaluation.
	EvaluationEpisodes int
	// Parallelism is the number of workers used by evaluation.
	Parallelism int
	// HiddenUnits are the widths of the agents' hidden layers. Empty selects
	// the linear agent.
	HiddenUnits []int

	DiscountRate    float32
	ExplorationRate float32
	LearningRate    float32
}

func DefaultConfig() Config {
	return Config{
		Episodes:           9000,
		Interval:           50,
		EvaluationEpisodes: 10000,
		Parallelism:        runtime.NumCPU(),
		HiddenUnits:        []int{64, 64},
		DiscountRate:       1.0,
		ExplorationRate:    0.1,
		LearningRate:       1e-3,
	}
}

func (c Config) Validate() error {
	positives := []struct {
		name string
		v    int
	}{
		{"Episodes", c.Episodes},
		{"Interval", c.Interval},
		{"EvaluationEpisodes", c.EvaluationEpisodes},
		{"Parallelism", c.Parallelism},
	}
	for _, p := range positives {
		if p.v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, p.name, p.v)
		}
	}

	for i, n := range c.HiddenUnits {
		if n <= 0 {
			return fmt.Errorf("%w: HiddenUnits[%d] must be positive, got %d", ErrInvalidConfig, i, n)
		}
	}

	rates := []struct {
		name string
		v    float32
	}{
		{"DiscountRate", c.DiscountRate},
		{"ExplorationRate", c.ExplorationRate},
	}
	for _, r := range rates {
		if r.v < 0 || r.v > 1 {
			return fmt.Errorf("%w: %s must be in [0, 1], got %f", ErrInvalidConfig, r.name, r.v)
		}
	}

	if c.LearningRate <= 0 {
		return fmt.Errorf("%w: LearningRate must be positive, got %f", ErrInvalidConfig, c.LearningRate)
	}
	return nil
}
