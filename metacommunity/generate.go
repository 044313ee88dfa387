package metacommunity

import (
	"math"
	"math/rand"

	"github.com/archipelago-eco/archipelago/errors"
	"github.com/archipelago-eco/archipelago/logger"
	"github.com/archipelago-eco/archipelago/phylo"
)

// rawCommunity is the raw output of a generation strategy before table
// normalization. Optional fields stay zero for strategies that do not
// produce them.
type rawCommunity struct {
	abundances []float64
	ids        []string
	traits     []float64

	tree       *phylo.Tree
	newick     string
	treeHeight float64

	// staged parameter updates, committed only when the whole generation
	// pass succeeds
	richnessOverride  int
	hasRichness       bool
	traitRateOverride float64
	hasTraitRate      bool

	filteringOptimum    float64
	hasFilteringOptimum bool
}

// generate dispatches on the resolved source and returns the raw community.
func (p *Pool) generate(rng *rand.Rand) (*rawCommunity, error) {
	switch p.source.Kind {
	case SourceUniform:
		return p.generateUniform()
	case SourceLogNormal:
		return p.generateLogNormal(rng)
	case SourceLogSeries:
		return p.generateLogSeries(rng)
	case SourceFile:
		return p.generateFromFile()
	}
	return nil, errors.AssertionFailedf("unhandled source kind %d", p.source.Kind)
}

// generateUniform spreads J_m individuals evenly across S_m species.
func (p *Pool) generateUniform() (*rawCommunity, error) {
	s, err := p.params.GetInt(ParamSpeciesRichness)
	if err != nil {
		return nil, err
	}
	j, err := p.params.Get(ParamTotalIndividuals)
	if err != nil {
		return nil, err
	}

	abundances := make([]float64, s)
	per := j / float64(s)
	for i := range abundances {
		abundances[i] = per
	}
	return &rawCommunity{abundances: abundances}, nil
}

// generateLogNormal draws S_m abundances from a log-normal distribution
// with the configured shape parameter and unit location offset.
// Diagnostic/testing variant.
func (p *Pool) generateLogNormal(rng *rand.Rand) (*rawCommunity, error) {
	s, err := p.params.GetInt(ParamSpeciesRichness)
	if err != nil {
		return nil, err
	}

	abundances := make([]float64, s)
	for i := range abundances {
		abundances[i] = 1 + math.Exp(p.lognormShape*rng.NormFloat64())
	}
	return &rawCommunity{abundances: abundances}, nil
}

// generateLogSeries delegates to the phylogenetic simulator and derives the
// filtering optimum from the realized trait distribution.
func (p *Pool) generateLogSeries(rng *rand.Rand) (*rawCommunity, error) {
	j, err := p.params.GetInt(ParamTotalIndividuals)
	if err != nil {
		return nil, err
	}
	s, err := p.params.GetInt(ParamSpeciesRichness)
	if err != nil {
		return nil, err
	}
	lambda, err := p.params.Get(ParamSpeciationRate)
	if err != nil {
		return nil, err
	}
	deathProportion, err := p.params.Get(ParamDeathProportion)
	if err != nil {
		return nil, err
	}
	traitRate, err := p.params.Get(ParamTraitRate)
	if err != nil {
		return nil, err
	}

	resp, err := p.sim.Simulate(rng, phylo.Request{
		J:               j,
		S:               s,
		SpeciationRate:  lambda,
		DeathProportion: deathProportion,
		TraitRate:       traitRate,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "phylogenetic simulation (J=%d S=%d lambda=%g death=%g sigma2=%g)",
			j, s, lambda, deathProportion, traitRate)
	}

	raw := &rawCommunity{
		abundances: resp.Abundances,
		ids:        resp.Order,
		tree:       resp.Tree,
		newick:     resp.Newick,
	}
	if resp.Tree != nil {
		raw.treeHeight = resp.Tree.Height()
	}

	raw.traits = make([]float64, 0, len(resp.Order))
	for _, id := range resp.Order {
		trait, ok := resp.Traits[id]
		if !ok {
			return nil, errors.NewGenerationError("simulator returned no trait for species %q", id)
		}
		raw.traits = append(raw.traits, trait)
	}

	// The environmental-filtering optimum is a single draw around the
	// realized trait distribution.
	if len(raw.traits) > 0 {
		mean, std := meanStd(raw.traits)
		raw.filteringOptimum = mean + std*rng.NormFloat64()
		raw.hasFilteringOptimum = true
	}
	return raw, nil
}

// generateFromFile parses the configured community file. File-driven
// definitions are authoritative over richness, and the full format also
// carries the trait evolution rate.
func (p *Pool) generateFromFile() (*rawCommunity, error) {
	fc, err := parseCommunityFile(p.source.Path)
	if err != nil {
		return nil, err
	}
	logger.Debugw("community file parsed",
		"path", p.source.Path,
		"richness", len(fc.abundances),
		"full_format", fc.fullFormat,
	)

	raw := &rawCommunity{
		abundances:       fc.abundances,
		ids:              fc.ids,
		traits:           fc.traits,
		richnessOverride: len(fc.abundances),
		hasRichness:      true,
	}
	if fc.fullFormat {
		raw.treeHeight = fc.treeHeight
		raw.traitRateOverride = fc.traitRate
		raw.hasTraitRate = true
	}
	return raw, nil
}

// meanStd returns the mean and population standard deviation.
func meanStd(values []float64) (mean, std float64) {
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	for _, v := range values {
		std += (v - mean) * (v - mean)
	}
	std = math.Sqrt(std / float64(len(values)))
	return mean, std
}
