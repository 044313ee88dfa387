package phylo

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/archipelago-eco/archipelago/errors"
)

// DefaultMaxAttempts bounds how many times the birth-death simulation is
// restarted after whole-clade extinction before giving up.
const DefaultMaxAttempts = 1000

// Request describes one metacommunity simulation: a birth-death phylogeny
// with S extant tips, Brownian trait evolution along it, and log-series
// abundances for J total individuals.
type Request struct {
	J               int
	S               int
	SpeciationRate  float64
	DeathProportion float64
	TraitRate       float64
}

// Validate checks the request against the simulator contract.
func (r Request) Validate() error {
	if r.S < 1 {
		return errors.NewGenerationError("species richness must be >= 1, got %d", r.S)
	}
	if r.J < 1 {
		return errors.NewGenerationError("total individuals must be >= 1, got %d", r.J)
	}
	if r.J <= r.S {
		return errors.NewGenerationError("log-series abundances require J > S, got J=%d S=%d", r.J, r.S)
	}
	if r.SpeciationRate <= 0 {
		return errors.NewGenerationError("speciation rate must be > 0, got %g", r.SpeciationRate)
	}
	if r.DeathProportion < 0 || r.DeathProportion >= 1 {
		return errors.NewGenerationError("death proportion must be in [0, 1), got %g", r.DeathProportion)
	}
	if r.TraitRate < 0 {
		return errors.NewGenerationError("trait rate must be >= 0, got %g", r.TraitRate)
	}
	return nil
}

// Response carries the simulated phylogeny, per-species traits, and
// abundances. Order lists species ids in generation order; Traits maps each
// id to its trait value. Tree may be nil for simulators that only return the
// Newick serialization.
type Response struct {
	Tree       *Tree
	Newick     string
	Abundances []float64
	Traits     map[string]float64
	Order      []string
}

// Simulator generates a metacommunity phylogeny with traits and abundances.
// Implementations draw all randomness from the supplied generator.
type Simulator interface {
	Simulate(rng *rand.Rand, req Request) (*Response, error)
}

// BirthDeathSimulator is the in-process Simulator: forward birth-death
// simulation conditioned on S extant tips (extinct lineages pruned),
// Brownian motion traits, and Fisher log-series abundances.
type BirthDeathSimulator struct {
	// MaxAttempts bounds restarts after whole-clade extinction.
	// Zero means DefaultMaxAttempts.
	MaxAttempts int
}

var _ Simulator = (*BirthDeathSimulator)(nil)

// Simulate implements Simulator.
func (s *BirthDeathSimulator) Simulate(rng *rand.Rand, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	maxAttempts := s.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	tree, err := simulateBirthDeath(rng, req.S, req.SpeciationRate, req.SpeciationRate*req.DeathProportion, maxAttempts)
	if err != nil {
		return nil, err
	}

	evolveTraits(rng, tree, req.TraitRate)

	tips := tree.Tips()
	order := make([]string, len(tips))
	traits := make(map[string]float64, len(tips))
	for i, tip := range tips {
		order[i] = tip.Label
		traits[tip.Label] = tip.Trait
	}

	p, err := LogSeriesParam(req.J, req.S)
	if err != nil {
		return nil, err
	}
	abundances := make([]float64, req.S)
	for i := range abundances {
		abundances[i] = float64(sampleLogSeries(rng, p))
	}

	return &Response{
		Tree:       tree,
		Newick:     tree.Newick(),
		Abundances: abundances,
		Traits:     traits,
		Order:      order,
	}, nil
}

// lineage tracks a live branch during forward simulation.
type lineage struct {
	node  *Node
	birth float64
}

// simulateBirthDeath runs a forward birth-death simulation until S lineages
// are simultaneously extant, then prunes extinct lineages and labels the
// surviving tips t1..tS. Whole-clade extinction restarts the simulation, up
// to maxAttempts times.
func simulateBirthDeath(rng *rand.Rand, s int, lambda, mu float64, maxAttempts int) (*Tree, error) {
	if s == 1 {
		return &Tree{Root: &Node{Label: "t1"}}, nil
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		root := &Node{}
		left := &Node{}
		right := &Node{}
		root.Children = []*Node{left, right}

		t := 0.0
		active := []lineage{{left, 0}, {right, 0}}

		for len(active) > 0 && len(active) < s {
			n := float64(len(active))
			t += rng.ExpFloat64() / (n * (lambda + mu))

			idx := rng.Intn(len(active))
			l := active[idx]
			l.node.Length = t - l.birth

			if rng.Float64() < lambda/(lambda+mu) {
				// Speciation: the lineage splits in two.
				c1 := &Node{}
				c2 := &Node{}
				l.node.Children = []*Node{c1, c2}
				active[idx] = lineage{c1, t}
				active = append(active, lineage{c2, t})
			} else {
				// Extinction: the lineage dies unlabeled.
				active[idx] = active[len(active)-1]
				active = active[:len(active)-1]
			}
		}

		if len(active) == 0 {
			continue
		}

		// Advance past one more waiting time so terminal branches have
		// nonzero length, then cut the tree at the present.
		n := float64(len(active))
		t += rng.ExpFloat64() / (n * (lambda + mu))

		extant := make(map[*Node]bool, len(active))
		for _, l := range active {
			l.node.Length = t - l.birth
			extant[l.node] = true
		}

		pruned := pruneExtinct(root, extant)
		if pruned == nil {
			continue
		}
		pruned.Length = 0
		tree := &Tree{Root: pruned}

		for i, tip := range tree.Tips() {
			tip.Label = fmt.Sprintf("t%d", i+1)
		}
		return tree, nil
	}

	return nil, errors.NewGenerationError(
		"birth-death simulation went extinct %d times in a row (lambda=%g mu=%g S=%d)",
		maxAttempts, lambda, mu, s)
}

// pruneExtinct removes subtrees without extant descendants and suppresses
// the resulting unifurcations, merging branch lengths.
func pruneExtinct(n *Node, extant map[*Node]bool) *Node {
	if n.IsTip() {
		if extant[n] {
			return n
		}
		return nil
	}
	kept := n.Children[:0]
	for _, c := range n.Children {
		if p := pruneExtinct(c, extant); p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		kept[0].Length += n.Length
		return kept[0]
	default:
		n.Children = kept
		return n
	}
}

// evolveTraits runs Brownian motion down the tree: the root trait is 0 and
// each child adds a Normal(0, rate × branch length) increment.
func evolveTraits(rng *rand.Rand, tree *Tree, rate float64) {
	if tree == nil || tree.Root == nil {
		return
	}
	var walk func(n *Node, parent float64)
	walk = func(n *Node, parent float64) {
		n.Trait = parent + rng.NormFloat64()*math.Sqrt(rate*n.Length)
		for _, c := range n.Children {
			walk(c, n.Trait)
		}
	}
	walk(tree.Root, 0)
}

// LogSeriesParam returns the Fisher log-series parameter p for a community
// of J individuals across S species: with mean abundance nbar = J/S,
// p = 1 - 1/nbar.
func LogSeriesParam(j, s int) (float64, error) {
	nbar := float64(j) / float64(s)
	if nbar <= 1 {
		return 0, errors.NewGenerationError("log-series mean abundance must exceed 1, got J=%d S=%d", j, s)
	}
	return 1 - 1/nbar, nil
}

// sampleLogSeries draws one abundance from the log-series distribution with
// parameter p using Devroye's LS algorithm.
func sampleLogSeries(rng *rand.Rand, p float64) int {
	if p <= 0 {
		return 1
	}
	u := rng.Float64()
	v := rng.Float64()
	q := 1 - math.Pow(1-p, v)
	if q <= 0 || q >= 1 {
		return 1
	}
	switch {
	case u < q*q:
		return int(math.Floor(1 + math.Log(u)/math.Log(q)))
	case u > q:
		return 1
	default:
		return 2
	}
}
