package mock

import (
	"RandomWalkService/internal/model"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Step distributions supported by the generator
const (
	DistributionNormal  = "normal"
	DistributionUniform = "uniform"
)

// GeneratorConfig holds configuration for the random walk generator
type GeneratorConfig struct {
	Length       int
	StartPrice   float64
	StepMean     float64
	StepStdDev   float64
	Distribution string
	// Seed 0 seeds from the clock on every call
	Seed int64
}

// DefaultGeneratorConfig returns the default walk: 16 points from 100 with N(0, 2) steps
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Length:       16,
		StartPrice:   100.0,
		StepMean:     0.0,
		StepStdDev:   2.0,
		Distribution: DistributionNormal,
		Seed:         42,
	}
}

// Validate checks the config can produce a series
func (c GeneratorConfig) Validate() error {
	if c.Length < 1 {
		return fmt.Errorf("walk length must be at least 1, got %d", c.Length)
	}
	if c.StepStdDev < 0 || math.IsNaN(c.StepStdDev) || math.IsInf(c.StepStdDev, 0) {
		return fmt.Errorf("step standard deviation must be a non-negative number, got %v", c.StepStdDev)
	}
	if math.IsNaN(c.StartPrice) || math.IsInf(c.StartPrice, 0) {
		return fmt.Errorf("start price must be finite, got %v", c.StartPrice)
	}
	switch c.Distribution {
	case DistributionNormal, DistributionUniform:
	default:
		return fmt.Errorf("unknown step distribution %q (supported: %s, %s)", c.Distribution, DistributionNormal, DistributionUniform)
	}
	return nil
}

// RandomWalkGenerator produces the default price series
type RandomWalkGenerator struct {
	config GeneratorConfig
}

// NewRandomWalkGenerator creates a generator with default config
func NewRandomWalkGenerator() *RandomWalkGenerator {
	return NewRandomWalkGeneratorWithConfig(DefaultGeneratorConfig())
}

// NewRandomWalkGeneratorWithConfig creates a generator with custom config
func NewRandomWalkGeneratorWithConfig(config GeneratorConfig) *RandomWalkGenerator {
	return &RandomWalkGenerator{config: config}
}

// Config returns the generator configuration
func (g *RandomWalkGenerator) Config() GeneratorConfig {
	return g.config
}

// Generate builds a walk of config.Length points. With a fixed seed every call
// returns the same series.
func (g *RandomWalkGenerator) Generate() model.Series {
	seed := g.config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	length := g.config.Length
	if length < 1 {
		length = 1
	}

	series := make(model.Series, length)
	price := g.config.StartPrice
	series[0] = model.Point{Time: 0, Price: price}
	for i := 1; i < length; i++ {
		price += g.step(rng)
		series[i] = model.Point{Time: int64(i), Price: price}
	}
	return series
}

// step draws one increment. The uniform variant spans +-sqrt(3)*stddev so both
// distributions share the same variance.
func (g *RandomWalkGenerator) step(rng *rand.Rand) float64 {
	switch g.config.Distribution {
	case DistributionUniform:
		half := math.Sqrt(3) * g.config.StepStdDev
		return g.config.StepMean + (rng.Float64()*2-1)*half
	default:
		return g.config.StepMean + rng.NormFloat64()*g.config.StepStdDev
	}
}
