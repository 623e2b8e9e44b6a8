package indicator

import (
	"slices"
	"sync"

	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
	"github.com/shopspring/decimal"
)

// Factory builds a decimal indicator from configuration parameters.
type Factory func(params map[string]any) (Indicator[decimal.Decimal], error)

// BarFactory builds an indicator that consumes whole bars.
type BarFactory func(params map[string]any) (Indicator[types.Bar], error)

// Catalog maps indicator kinds to factories so registrations can be driven by configuration.
type Catalog interface {
	Register(kind types.IndicatorType, factory Factory) error
	RegisterBar(kind types.IndicatorType, factory BarFactory) error
	Create(kind types.IndicatorType, params map[string]any) (Indicator[decimal.Decimal], error)
	CreateBar(kind types.IndicatorType, params map[string]any) (Indicator[types.Bar], error)
	// IsBarKind reports whether kind was registered with RegisterBar.
	IsBarKind(kind types.IndicatorType) bool
	List() []types.IndicatorType
	Remove(kind types.IndicatorType) error
}

// CatalogV1 is the default Catalog implementation.
type CatalogV1 struct {
	factories    map[types.IndicatorType]Factory
	barFactories map[types.IndicatorType]BarFactory
	mu           sync.RWMutex
}

// NewCatalog creates an empty catalog.
func NewCatalog() Catalog {
	return &CatalogV1{
		factories:    make(map[types.IndicatorType]Factory),
		barFactories: make(map[types.IndicatorType]BarFactory),
		mu:           sync.RWMutex{},
	}
}

// NewDefaultCatalog creates a catalog holding the built-in decimal indicators.
func NewDefaultCatalog() Catalog {
	c := NewCatalog()

	_ = c.Register(types.IndicatorTypeSMA, func(params map[string]any) (Indicator[decimal.Decimal], error) {
		period, err := intParam(params, "period", 20)
		if err != nil {
			return nil, err
		}

		return scalar(NewSMA(period))
	})
	_ = c.Register(types.IndicatorTypeEMA, func(params map[string]any) (Indicator[decimal.Decimal], error) {
		period, err := intParam(params, "period", 20)
		if err != nil {
			return nil, err
		}

		return scalar(NewEMA(period))
	})
	_ = c.Register(types.IndicatorTypeDEMA, func(params map[string]any) (Indicator[decimal.Decimal], error) {
		period, err := intParam(params, "period", 20)
		if err != nil {
			return nil, err
		}

		return scalar(NewDEMA(period))
	})
	_ = c.Register(types.IndicatorTypeRSI, func(params map[string]any) (Indicator[decimal.Decimal], error) {
		period, err := intParam(params, "period", 14)
		if err != nil {
			return nil, err
		}

		return scalar(NewRSI(period))
	})
	_ = c.Register(types.IndicatorTypeMACD, func(params map[string]any) (Indicator[decimal.Decimal], error) {
		fast, err := intParam(params, "fast", 12)
		if err != nil {
			return nil, err
		}

		slow, err := intParam(params, "slow", 26)
		if err != nil {
			return nil, err
		}

		signal, err := intParam(params, "signal", 9)
		if err != nil {
			return nil, err
		}

		return scalar(NewMACD(fast, slow, signal))
	})
	_ = c.Register(types.IndicatorTypeBollingerBands, func(params map[string]any) (Indicator[decimal.Decimal], error) {
		period, err := intParam(params, "period", 20)
		if err != nil {
			return nil, err
		}

		stdDev, err := floatParam(params, "std_dev", 2)
		if err != nil {
			return nil, err
		}

		return scalar(NewBollingerBands(period, stdDev))
	})
	_ = c.RegisterBar(types.IndicatorTypeVWAP, func(params map[string]any) (Indicator[types.Bar], error) {
		period, err := intParam(params, "period", 20)
		if err != nil {
			return nil, err
		}

		return bar(NewVWAP(period))
	})
	_ = c.RegisterBar(types.IndicatorTypeATR, func(params map[string]any) (Indicator[types.Bar], error) {
		period, err := intParam(params, "period", 14)
		if err != nil {
			return nil, err
		}

		return bar(NewATR(period))
	})
	_ = c.RegisterBar(types.IndicatorTypeStochastic, func(params map[string]any) (Indicator[types.Bar], error) {
		period, err := intParam(params, "period", 14)
		if err != nil {
			return nil, err
		}

		k, err := intParam(params, "k_period", 3)
		if err != nil {
			return nil, err
		}

		d, err := intParam(params, "d_period", 3)
		if err != nil {
			return nil, err
		}

		return bar(NewStochastic(period, k, d))
	})

	return c
}

// Register adds a factory to the catalog.
func (c *CatalogV1) Register(kind types.IndicatorType, factory Factory) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.exists(kind) {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "indicator %s already registered", kind)
	}

	c.factories[kind] = factory

	return nil
}

// RegisterBar adds a bar indicator factory to the catalog.
func (c *CatalogV1) RegisterBar(kind types.IndicatorType, factory BarFactory) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.exists(kind) {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "indicator %s already registered", kind)
	}

	c.barFactories[kind] = factory

	return nil
}

func (c *CatalogV1) exists(kind types.IndicatorType) bool {
	_, scalarKind := c.factories[kind]
	_, barKind := c.barFactories[kind]

	return scalarKind || barKind
}

// Create builds a new indicator instance of the given kind.
func (c *CatalogV1) Create(kind types.IndicatorType, params map[string]any) (Indicator[decimal.Decimal], error) {
	c.mu.RLock()
	factory, exists := c.factories[kind]
	c.mu.RUnlock()

	if !exists {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s not found", kind)
	}

	ind, err := factory(params)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "failed to create %s", kind)
	}

	return ind, nil
}

// CreateBar builds a new bar indicator instance of the given kind.
func (c *CatalogV1) CreateBar(kind types.IndicatorType, params map[string]any) (Indicator[types.Bar], error) {
	c.mu.RLock()
	factory, exists := c.barFactories[kind]
	c.mu.RUnlock()

	if !exists {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "bar indicator %s not found", kind)
	}

	ind, err := factory(params)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "failed to create %s", kind)
	}

	return ind, nil
}

// IsBarKind implements Catalog.
func (c *CatalogV1) IsBarKind(kind types.IndicatorType) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.barFactories[kind]

	return ok
}

// List returns every registered kind, sorted.
func (c *CatalogV1) List() []types.IndicatorType {
	c.mu.RLock()
	defer c.mu.RUnlock()

	kinds := make([]types.IndicatorType, 0, len(c.factories)+len(c.barFactories))
	for kind := range c.factories {
		kinds = append(kinds, kind)
	}

	for kind := range c.barFactories {
		kinds = append(kinds, kind)
	}

	slices.Sort(kinds)

	return kinds
}

// Remove deletes a kind from the catalog.
func (c *CatalogV1) Remove(kind types.IndicatorType) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.exists(kind) {
		return errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s not found", kind)
	}

	delete(c.factories, kind)
	delete(c.barFactories, kind)

	return nil
}

// scalar and bar drop the typed nil pointer a failed constructor returns.
func scalar(ind Indicator[decimal.Decimal], err error) (Indicator[decimal.Decimal], error) {
	if err != nil {
		return nil, err
	}

	return ind, nil
}

func bar(ind Indicator[types.Bar], err error) (Indicator[types.Bar], error) {
	if err != nil {
		return nil, err
	}

	return ind, nil
}

// intParam reads an integer parameter, accepting the float64 that YAML and JSON decoders produce.
func intParam(params map[string]any, name string, fallback int) (int, error) {
	raw, ok := params[name]
	if !ok {
		return fallback, nil
	}

	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidType, "invalid type for %s parameter, expected int or float", name)
	}
}

func floatParam(params map[string]any, name string, fallback float64) (float64, error) {
	raw, ok := params[name]
	if !ok {
		return fallback, nil
	}

	switch v := raw.(type) {
	case int:
		return float64(v), nil
	case float64:
		return v, nil
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidType, "invalid type for %s parameter, expected float", name)
	}
}
