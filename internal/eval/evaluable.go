// Package eval implements the evaluable-expression wrapper: an expression
// tree paired with a caching policy chosen from its dependency footprint,
// mirroring the original's Evaluatable (evaluatable.h).
package eval

import (
	"fmt"

	"github.com/thomaskeller79/rddlc/internal/ast"
	"github.com/thomaskeller79/rddlc/internal/hashkey"
)

// CachingType is the four-way caching policy an Evaluable can use.
type CachingType int

const (
	// CacheNone never caches; every call re-evaluates the formula.
	CacheNone CachingType = iota
	// CacheVector caches in a preallocated slice indexed by the composed
	// hash key, used when the key space is small enough to preallocate.
	CacheVector
	// CacheMap caches in a map, used when the key space is too large to
	// preallocate but still worth memoizing.
	CacheMap
	// CacheDisabledMap starts as CacheMap but has been disabled (e.g.
	// because caching was found to be unsafe for this evaluable, such as
	// one with an arithmetic function applied to probabilistic input);
	// it behaves like CacheNone but remembers it was once a map cache.
	CacheDisabledMap
)

// Thresholds bounds the key-space sizes eligible for VECTOR and MAP
// caching respectively.
type Thresholds struct {
	VectorMax int64
	MapMax    int64
}

// DefaultThresholds matches the tunables named in the CLI configuration
// (-vector-threshold / -map-threshold): VECTOR up to 2^20 entries, MAP up
// to 2^24.
var DefaultThresholds = Thresholds{VectorMax: 1 << 20, MapMax: 1 << 24}

// ChooseCachingType selects a CachingType for a dependency footprint of the
// given size, under the given thresholds.
func ChooseCachingType(size int64, t Thresholds) CachingType {
	switch {
	case size <= t.VectorMax:
		return CacheVector
	case size <= t.MapMax:
		return CacheMap
	default:
		return CacheNone
	}
}

// Evaluable wraps a formula with the bookkeeping needed to evaluate it
// efficiently and repeatedly during search: its dependency footprint, the
// hash-key scheme derived from that footprint, and the caching state
// (standard and Kleene) built from it. Only the compile orchestration sets
// HashIndex and the cache sizing/action-hash-key tables, mirroring
// the original's "friend of RDDLTask" restriction on Evaluatable's private
// setup.
type Evaluable struct {
	Name    string
	Formula ast.Expr

	DependentStateFluents []int
	PositiveActionDeps    []int
	NegativeActionDeps    []int

	IsProbabilistic       bool
	HasArithmeticFunction bool

	HashIndex int

	cachingType CachingType
	cacheVector []cacheEntry
	cacheMap    map[int64]float64

	kleeneCachingType CachingType
	kleeneCacheVector []kleeneCacheEntry
	kleeneCacheMap    map[int64]ast.KleeneValue

	scheme hashkey.Scheme
}

type cacheEntry struct {
	set   bool
	value float64
}

type kleeneCacheEntry struct {
	set   bool
	value ast.KleeneValue
}

// NewEvaluable builds an Evaluable from a formula, deriving its dependency
// footprint directly from the expression tree.
func NewEvaluable(name string, formula ast.Expr) *Evaluable {
	deps := formula.Dependencies()
	e := &Evaluable{Name: name, Formula: formula}
	for idx := range deps.StateFluents {
		e.DependentStateFluents = append(e.DependentStateFluents, idx)
	}
	for idx := range deps.PositiveActionFluents {
		e.PositiveActionDeps = append(e.PositiveActionDeps, idx)
	}
	for idx := range deps.NegativeActionFluents {
		e.NegativeActionDeps = append(e.NegativeActionDeps, idx)
	}
	e.cachingType = CacheNone
	e.kleeneCachingType = CacheNone
	return e
}

// IsActionIndependent reports whether this evaluable reads no action
// fluent at all.
func (e *Evaluable) IsActionIndependent() bool {
	return len(e.PositiveActionDeps) == 0 && len(e.NegativeActionDeps) == 0
}

// HasPositiveActionDependencies reports whether any action fluent appears
// with positive polarity.
func (e *Evaluable) HasPositiveActionDependencies() bool {
	return len(e.PositiveActionDeps) > 0
}

// ActionDependencies returns the set of action fluents this evaluable
// depends on, positive or negative polarity alike. The positive/negative
// split (PositiveActionDeps/NegativeActionDeps) records the polarity each
// fluent is read with; the hash-key
// scheme and the action part of the cache index must vary with every
// action fluent the formula reads regardless of polarity, since a formula
// like ~a still changes value when a changes.
func (e *Evaluable) ActionDependencies() []int {
	seen := make(map[int]bool, len(e.PositiveActionDeps)+len(e.NegativeActionDeps))
	var deps []int
	for _, idx := range e.PositiveActionDeps {
		if !seen[idx] {
			seen[idx] = true
			deps = append(deps, idx)
		}
	}
	for _, idx := range e.NegativeActionDeps {
		if !seen[idx] {
			seen[idx] = true
			deps = append(deps, idx)
		}
	}
	return deps
}

// InitializeHashKeys stores the given scheme and sizes both the standard
// and the Kleene cache from its Size. Both caches are addressed with this
// one scheme; no bitmask-radix (BuildKleene) scheme is built or stored for
// the Kleene cache. This is only ever called by the compile
// orchestration during (re-)initialization after a simplification pass —
// mirroring the original's restriction of this setup to RDDLTask alone.
func (e *Evaluable) InitializeHashKeys(scheme hashkey.Scheme, t Thresholds) {
	e.scheme = scheme
	size := scheme.Size()
	e.cachingType = ChooseCachingType(size, t)
	if e.cachingType == CacheVector {
		e.cacheVector = make([]cacheEntry, size)
	} else if e.cachingType == CacheMap {
		e.cacheMap = make(map[int64]float64)
	}
	e.kleeneCachingType = ChooseCachingType(size, t)
	if e.kleeneCachingType == CacheVector {
		e.kleeneCacheVector = make([]kleeneCacheEntry, size)
	} else if e.kleeneCachingType == CacheMap {
		e.kleeneCacheMap = make(map[int64]ast.KleeneValue)
	}
}

// DisableCaching switches this evaluable to CacheDisabledMap (when it was a
// map cache) or CacheNone, sets the Kleene cache to CacheNone, and discards
// every cached entry of both.
func (e *Evaluable) DisableCaching() {
	if e.cachingType == CacheMap {
		e.cachingType = CacheDisabledMap
	} else {
		e.cachingType = CacheNone
	}
	e.cacheVector = nil
	e.cacheMap = nil
	e.kleeneCachingType = CacheNone
	e.kleeneCacheVector = nil
	e.kleeneCacheMap = nil
}

// Evaluate computes the formula's value for the given state and action,
// consulting and populating the cache according to the selected policy.
// The composed cache index (state-fluent hash key + action hash key) is
// always a local value, never a mutable field on the Evaluable — the
// original kept a scratch stateHashKey member for this, which this
// implementation intentionally does not reproduce.
func (e *Evaluable) Evaluate(state []float64, action []int, stateFluentHashKey int64) (float64, error) {
	switch e.cachingType {
	case CacheNone, CacheDisabledMap:
		return e.Formula.Evaluate(state, action)
	case CacheVector:
		idx, err := e.index(stateFluentHashKey, action)
		if err != nil {
			return 0, err
		}
		if idx < 0 || idx >= int64(len(e.cacheVector)) {
			return 0, fmt.Errorf("evaluable %q: cache index %d out of vector bounds (len %d)", e.Name, idx, len(e.cacheVector))
		}
		if e.cacheVector[idx].set {
			return e.cacheVector[idx].value, nil
		}
		v, err := e.Formula.Evaluate(state, action)
		if err != nil {
			return 0, err
		}
		e.cacheVector[idx] = cacheEntry{set: true, value: v}
		return v, nil
	case CacheMap:
		idx, err := e.index(stateFluentHashKey, action)
		if err != nil {
			return 0, err
		}
		if v, ok := e.cacheMap[idx]; ok {
			return v, nil
		}
		v, err := e.Formula.Evaluate(state, action)
		if err != nil {
			return 0, err
		}
		e.cacheMap[idx] = v
		return v, nil
	default:
		return 0, fmt.Errorf("evaluable %q: unknown caching type", e.Name)
	}
}

// EvaluateKleene computes the formula's three-valued outcome for the given
// Kleene state and action, consulting and populating the Kleene cache.
func (e *Evaluable) EvaluateKleene(state []ast.KleeneValue, action []int, stateFluentHashKey int64) (ast.KleeneValue, error) {
	switch e.kleeneCachingType {
	case CacheNone, CacheDisabledMap:
		return e.Formula.EvaluateKleene(state, action)
	case CacheVector:
		idx, err := e.index(stateFluentHashKey, action)
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= int64(len(e.kleeneCacheVector)) {
			return nil, fmt.Errorf("evaluable %q: kleene cache index %d out of vector bounds (len %d)", e.Name, idx, len(e.kleeneCacheVector))
		}
		if e.kleeneCacheVector[idx].set {
			return e.kleeneCacheVector[idx].value, nil
		}
		v, err := e.Formula.EvaluateKleene(state, action)
		if err != nil {
			return nil, err
		}
		e.kleeneCacheVector[idx] = kleeneCacheEntry{set: true, value: v}
		return v, nil
	case CacheMap:
		idx, err := e.index(stateFluentHashKey, action)
		if err != nil {
			return nil, err
		}
		if v, ok := e.kleeneCacheMap[idx]; ok {
			return v, nil
		}
		v, err := e.Formula.EvaluateKleene(state, action)
		if err != nil {
			return nil, err
		}
		e.kleeneCacheMap[idx] = v
		return v, nil
	default:
		return nil, fmt.Errorf("evaluable %q: unknown kleene caching type", e.Name)
	}
}

// StateFluentHashKey composes this evaluable's state-fluent hash key from a
// full state vector, reading only the slots in DependentStateFluents. This
// is the value callers precompute once per concrete state (see
// state.State.HashKeys) and pass into Evaluate/EvaluateKleene, rather than
// recomposing it on every call.
func (e *Evaluable) StateFluentHashKey(stateValues []float64) (int64, error) {
	values := make(map[int]int64, len(e.DependentStateFluents))
	for _, idx := range e.DependentStateFluents {
		if idx < 0 || idx >= len(stateValues) {
			return 0, fmt.Errorf("evaluable %q: state index %d out of range", e.Name, idx)
		}
		values[idx] = int64(stateValues[idx])
	}
	return e.scheme.StateFluentHashKey(values)
}

func (e *Evaluable) index(stateFluentHashKey int64, action []int) (int64, error) {
	deps := e.ActionDependencies()
	actionValues := make(map[int]int64, len(deps))
	for _, idx := range deps {
		if idx < 0 || idx >= len(action) {
			return 0, fmt.Errorf("evaluable %q: action index %d out of range", e.Name, idx)
		}
		actionValues[idx] = int64(action[idx])
	}
	actionKey, err := e.scheme.ActionHashKey(actionValues)
	if err != nil {
		return 0, err
	}
	return hashkey.CacheIndex(stateFluentHashKey, actionKey)
}
