// Package metacommunity builds and serves the regional species pool that
// acts as the immigration source for island community assembly.
//
// A Pool is generated from one of several strategies (uniform, log-normal,
// log-series phylogenetic, or file-based), normalized into a community
// table whose immigration probabilities sum to 1, sampled for migrants
// during simulation, and extended append-only as local speciation occurs.
//
// The package is single-threaded: callers needing concurrent access must
// serialize writers (Generate, Regenerate, AddSpecies) against each other
// and against readers (GetMigrant, GetNMigrants). All randomness is drawn
// from explicitly supplied generators; there is no hidden global state.
package metacommunity

import (
	"fmt"
	"math/rand"

	"github.com/archipelago-eco/archipelago/errors"
	"github.com/archipelago-eco/archipelago/logger"
	"github.com/archipelago-eco/archipelago/phylo"
)

// Model constants outside the parameter set.
const (
	// DefaultLogNormShape is the shape parameter of the log-normal
	// abundance distribution.
	DefaultLogNormShape = 1.98

	// DefaultFilteringOptimum is the placeholder environmental-filtering
	// optimum before a phylogenetic generation pass derives a real one.
	DefaultFilteringOptimum = 1.0
)

// State tracks the pool lifecycle.
type State int

const (
	// StateUninitialized: no generation pass has completed; the pool is
	// not ready for sampling.
	StateUninitialized State = iota
	// StateGenerated: a generation pass completed and no extensions have
	// been added since.
	StateGenerated
	// StateExtended: one or more species were appended after generation.
	StateExtended
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateGenerated:
		return "generated"
	case StateExtended:
		return "extended"
	}
	return "unknown"
}

// Pool is the regional species pool. The zero value is not usable; use
// NewPool.
type Pool struct {
	params *ParameterStore
	source Source
	sim    phylo.Simulator

	lognormShape     float64
	filteringOptimum float64

	table *Table
	state State
}

// Option configures a Pool at construction time.
type Option func(*Pool)

// WithSimulator replaces the in-process phylogenetic simulator, e.g. with
// an ExternalSimulator.
func WithSimulator(sim phylo.Simulator) Option {
	return func(p *Pool) { p.sim = sim }
}

// WithLogNormShape overrides the log-normal shape parameter.
func WithLogNormShape(shape float64) Option {
	return func(p *Pool) { p.lognormShape = shape }
}

// NewPool creates an ungenerated pool for the given source string: one of
// the keywords "uniform", "lognorm", "logser", or a path to a community
// specification file. The source is resolved once, here; it is never
// re-inspected as a raw string during generation.
func NewPool(source string, opts ...Option) (*Pool, error) {
	src, err := ResolveSource(source)
	if err != nil {
		return nil, err
	}
	p := &Pool{
		params:           NewParameterStore(),
		source:           src,
		sim:              &phylo.BirthDeathSimulator{},
		lognormShape:     DefaultLogNormShape,
		filteringOptimum: DefaultFilteringOptimum,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Params returns the pool's parameter store.
func (p *Pool) Params() *ParameterStore {
	return p.params
}

// Source returns the resolved generation source.
func (p *Pool) Source() Source {
	return p.source
}

// State returns the lifecycle state.
func (p *Pool) State() State {
	return p.state
}

// Ready reports whether the pool can serve migrants.
func (p *Pool) Ready() bool {
	return p.state != StateUninitialized
}

// Table returns the community table, or nil before the first successful
// generation pass.
func (p *Pool) Table() *Table {
	return p.table
}

// FilteringOptimum returns the environmental-filtering optimum derived
// during the last phylogenetic generation pass.
func (p *Pool) FilteringOptimum() float64 {
	return p.filteringOptimum
}

// String implements fmt.Stringer.
func (p *Pool) String() string {
	richness, _ := p.params.GetInt(ParamSpeciesRichness)
	return fmt.Sprintf("Metacommunity(source=%s richness=%d state=%s)", p.source, richness, p.state)
}

// GenerateOptions controls a generation pass.
type GenerateOptions struct {
	// ResamplePriors re-draws every parameter with a configured prior
	// range before generating.
	ResamplePriors bool
	// RandomTraits discards generated trait values and draws uniform
	// random traits in [0, 1) instead.
	RandomTraits bool
}

// Generate runs a full generation pass, atomically replacing the community
// table on success. On any failure the prior table, parameters, and state
// are left untouched; retrying is the caller's responsibility. Extensions
// added since the last pass are discarded.
func (p *Pool) Generate(rng *rand.Rand, opts GenerateOptions) error {
	if opts.ResamplePriors {
		p.params.ResampleAll(rng)
	} else {
		p.params.resolvePending(rng)
	}

	raw, err := p.generate(rng)
	if err != nil {
		return err
	}

	configuredS, err := p.params.GetInt(ParamSpeciesRichness)
	if err != nil {
		return err
	}
	if raw.hasRichness {
		// File-driven definitions are authoritative over richness.
		configuredS = raw.richnessOverride
	}

	table, err := buildTable(rng, raw.abundances, raw.ids, raw.traits, opts.RandomTraits, configuredS)
	if err != nil {
		return errors.Wrapf(err, "normalizing %s community", p.source)
	}
	table.tree = raw.tree
	table.newick = raw.newick
	table.treeHeight = raw.treeHeight

	// Commit: wholesale table swap plus staged parameter updates. Nothing
	// above mutated observable state, so a failed pass leaves the pool as
	// it was.
	p.table = table
	p.state = StateGenerated
	if raw.hasRichness {
		p.params.current[ParamSpeciesRichness] = float64(raw.richnessOverride)
	}
	if raw.hasTraitRate {
		p.params.current[ParamTraitRate] = raw.traitRateOverride
	}
	if raw.hasFilteringOptimum {
		p.filteringOptimum = raw.filteringOptimum
	}

	logger.Infow("metacommunity generated",
		"source", p.source.String(),
		"richness", table.Len(),
		"total_abundance", table.TotalAbundance(),
	)
	return nil
}

// Regenerate discards the current table (extensions included) and runs a
// fresh generation pass, optionally re-sampling prior ranges first.
func (p *Pool) Regenerate(rng *rand.Rand, resamplePriors bool) error {
	return p.Generate(rng, GenerateOptions{ResamplePriors: resamplePriors})
}

// AddSpecies registers a locally speciated lineage in the regional
// bookkeeping. The new record has zero abundance and zero immigration
// probability, so it can never be drawn as a colonist and never perturbs
// the probability invariant over the original records. Duplicate ids are
// rejected.
func (p *Pool) AddSpecies(id string, traitValue float64) error {
	if !p.Ready() {
		return errors.NewGenerationError("cannot add species %q: pool has not been generated", id)
	}
	if err := p.table.addSpecies(id, traitValue); err != nil {
		return err
	}
	p.state = StateExtended
	logger.Debugw("species added to pool", "id", id, "trait_value", traitValue)
	return nil
}
