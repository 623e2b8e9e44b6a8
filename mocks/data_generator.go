package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/shopspring/decimal"
)

// DataGenerator generates realistic raw samples for tests and benchmarks.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how samples are generated.
type GeneratorConfig struct {
	// Instrument stamped on every sample
	Instrument types.Instrument
	// StartTime is the time of the first sample
	StartTime time.Time
	// Interval is the spacing between samples
	Interval time.Duration
	// Count is the number of samples to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% per sample)
	Volatility float64
	// Trend is the drift over the whole series (-0.01 to 0.01 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per sample
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
}

// DefaultConfig returns one day of minute samples for a test equity.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Instrument:     types.NewInstrument("TEST", "TEST", types.AssetClassEquity),
		StartTime:      time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
		Interval:       time.Minute,
		Count:          1440,
		InitialPrice:   100.0,
		Volatility:     0.002, // 0.2% per sample
		Trend:          0.0,
		VolumeBase:     10000,
		VolumeVariance: 0.3,
	}
}

// Generate creates samples following a geometric Brownian motion.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.MarketData {
	data := make([]types.MarketData, config.Count)
	currentPrice := config.InitialPrice
	currentTime := config.StartTime

	for i := range config.Count {
		open := currentPrice

		// Box-Muller transform for a standard normal draw
		u1 := 1 - g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		drift := config.Trend / float64(config.Count)

		closePrice := open * (1 + config.Volatility*z + drift)
		if closePrice <= 0 {
			closePrice = open * 0.99
		}

		high := math.Max(open, closePrice) + math.Abs(g.rng.Float64()*config.Volatility*open*0.5)

		low := math.Min(open, closePrice) - math.Abs(g.rng.Float64()*config.Volatility*open*0.5)
		if low <= 0 {
			low = math.Min(open, closePrice) * 0.99
		}

		volume := config.VolumeBase * (1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance)
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		data[i] = types.MarketData{
			Instrument: config.Instrument,
			Time:       currentTime,
			Open:       decimal.NewFromFloat(open).Round(4),
			High:       decimal.NewFromFloat(high).Round(4),
			Low:        decimal.NewFromFloat(low).Round(4),
			Close:      decimal.NewFromFloat(closePrice).Round(4),
			Volume:     decimal.NewFromFloat(volume).Round(2),
		}

		currentPrice = closePrice
		currentTime = currentTime.Add(config.Interval)
	}

	return data
}

// GenerateMultiInstrument generates one series per instrument, each in time order.
func (g *DataGenerator) GenerateMultiInstrument(instruments []types.Instrument, baseConfig GeneratorConfig) []types.MarketData {
	var allData []types.MarketData

	for _, instrument := range instruments {
		config := baseConfig
		config.Instrument = instrument
		config.InitialPrice = baseConfig.InitialPrice * (0.8 + g.rng.Float64()*0.4)
		config.Volatility = baseConfig.Volatility * (0.8 + g.rng.Float64()*0.4)

		allData = append(allData, g.Generate(config)...)
	}

	return allData
}

// GenerateDays generates days × 1440 minute samples for instrument with a fixed seed.
func GenerateDays(instrument types.Instrument, start time.Time, days int) []types.MarketData {
	config := DefaultConfig()
	config.Instrument = instrument
	config.StartTime = start
	config.Count = days * 1440

	return NewDataGenerator(42).Generate(config)
}
