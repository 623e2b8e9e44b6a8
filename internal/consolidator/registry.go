package consolidator

import (
	"sync"

	"github.com/rxtech-lab/argo-consolidator/internal/logger"
	"github.com/rxtech-lab/argo-consolidator/internal/period"
	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
	"go.uber.org/zap"
)

type registryKey struct {
	instrument types.Instrument
	key        period.Key
}

// CreateHook is called once for every consolidator the registry constructs,
// before it is handed to any caller.
type CreateHook func(c *Consolidator)

// Registry holds the live consolidators, at most one per (instrument, period).
// GetOrCreate is the only way live consolidators come into existence.
type Registry struct {
	mu           sync.RWMutex
	byKey        map[registryKey]*Consolidator
	byInstrument map[types.Instrument][]*Consolidator
	hooks        []CreateHook
	logger       *logger.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log *logger.Logger) *Registry {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Registry{
		byKey:        make(map[registryKey]*Consolidator),
		byInstrument: make(map[types.Instrument][]*Consolidator),
		logger:       log.Named("registry"),
	}
}

// OnCreate adds a hook run for every consolidator created after the call.
func (r *Registry) OnCreate(hook CreateHook) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hooks = append(r.hooks, hook)
}

// GetOrCreate returns the consolidator for (instrument, key), creating it on first
// use. The boolean reports whether this call created it.
func (r *Registry) GetOrCreate(instrument types.Instrument, key period.Key) (*Consolidator, bool) {
	rk := registryKey{instrument: instrument, key: key}

	r.mu.RLock()
	existing, ok := r.byKey[rk]
	r.mu.RUnlock()

	if ok {
		return existing, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byKey[rk]; ok {
		return existing, false
	}

	r.mustBeUnique(rk)

	c := New(instrument, key)
	r.byKey[rk] = c
	r.byInstrument[instrument] = append(r.byInstrument[instrument], c)

	for _, hook := range r.hooks {
		hook(c)
	}

	r.logger.Debug("Created consolidator",
		zap.String("instrument", instrument.String()),
		zap.String("period", key.String()),
	)

	return c, true
}

// mustBeUnique panics if the instrument index already holds a consolidator for
// the key that the key index does not know about. Caller holds r.mu.
func (r *Registry) mustBeUnique(rk registryKey) {
	for _, c := range r.byInstrument[rk.instrument] {
		if c.Key() == rk.key {
			r.logger.Error("Duplicate consolidator detected",
				zap.String("instrument", rk.instrument.String()),
				zap.String("period", rk.key.String()),
			)

			panic(errors.Newf(errors.ErrCodeDuplicateConsolidator,
				"registry already holds a consolidator for %s/%s", rk.instrument, rk.key))
		}
	}
}

// Get returns the consolidator for (instrument, key) without creating one.
func (r *Registry) Get(instrument types.Instrument, key period.Key) (*Consolidator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byKey[registryKey{instrument: instrument, key: key}]

	return c, ok
}

// ForInstrument returns the consolidators of an instrument in creation order.
func (r *Registry) ForInstrument(instrument types.Instrument) []*Consolidator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.byInstrument[instrument]
	out := make([]*Consolidator, len(list))
	copy(out, list)

	return out
}

// Instruments returns every instrument with at least one consolidator.
func (r *Registry) Instruments() []types.Instrument {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.Instrument, 0, len(r.byInstrument))
	for instrument := range r.byInstrument {
		out = append(out, instrument)
	}

	return out
}

// Len returns the number of live consolidators.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byKey)
}
