package metacommunity

import (
	"fmt"
	"math/rand"

	"github.com/archipelago-eco/archipelago/errors"
	"github.com/archipelago-eco/archipelago/phylo"
)

// Record is one species in the regional pool.
type Record struct {
	ID                     string
	Abundance              float64
	ImmigrationProbability float64
	TraitValue             float64
}

// Table is the ordered community record set plus the phylogeny associated
// with the originally generated species. Records appended later through
// AddSpecies are never labeled by the tree and never perturb the
// immigration-probability invariant: they carry zero abundance and zero
// probability by construction.
type Table struct {
	records []Record
	index   map[string]int

	// originalCount is the number of records present when generation
	// completed; immigration probabilities over records[:originalCount]
	// sum to 1.
	originalCount int

	tree       *phylo.Tree
	newick     string
	treeHeight float64
}

// buildTable normalizes raw generation output into a Table. Defaults are
// filled in here: ids t0..t(S-1) when none were generated, and uniform
// random traits in [0, 1) when none were generated or randomTraits is set.
func buildTable(rng *rand.Rand, abundances []float64, ids []string, traits []float64, randomTraits bool, configuredS int) (*Table, error) {
	s := len(abundances)

	if len(ids) == 0 {
		ids = make([]string, s)
		for i := range ids {
			ids[i] = fmt.Sprintf("t%d", i)
		}
	}
	if randomTraits || len(traits) == 0 {
		traits = make([]float64, s)
		for i := range traits {
			traits[i] = rng.Float64()
		}
	}

	if len(ids) != s || len(traits) != s {
		return nil, errors.NewGenerationError(
			"species count mismatch: configured %d, got %d abundances, %d ids, %d trait values",
			configuredS, s, len(ids), len(traits))
	}

	total := 0.0
	for i, a := range abundances {
		if a < 0 {
			return nil, errors.NewGenerationError("abundance of %q is negative: %g", ids[i], a)
		}
		total += a
	}
	if total == 0 {
		return nil, errors.NewGenerationError("total abundance is zero across %d species", s)
	}

	records := make([]Record, s)
	index := make(map[string]int, s)
	for i := range records {
		if _, dup := index[ids[i]]; dup {
			return nil, errors.NewGenerationError("duplicate species id %q in generated community", ids[i])
		}
		index[ids[i]] = i
		records[i] = Record{
			ID:                     ids[i],
			Abundance:              abundances[i],
			ImmigrationProbability: abundances[i] / total,
			TraitValue:             traits[i],
		}
	}

	return &Table{
		records:       records,
		index:         index,
		originalCount: s,
	}, nil
}

// Len returns the number of records, extensions included.
func (t *Table) Len() int {
	return len(t.records)
}

// OriginalCount returns the number of records present when generation
// completed.
func (t *Table) OriginalCount() int {
	return t.originalCount
}

// Records returns a copy of the record sequence.
func (t *Table) Records() []Record {
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Record returns the record at a stable index.
func (t *Table) Record(i int) Record {
	return t.records[i]
}

// Lookup returns the record with the given id.
func (t *Table) Lookup(id string) (Record, bool) {
	i, ok := t.index[id]
	if !ok {
		return Record{}, false
	}
	return t.records[i], true
}

// TotalAbundance returns the realized total abundance over the original
// records (Jm_actual, the probability denominator).
func (t *Table) TotalAbundance() float64 {
	total := 0.0
	for _, r := range t.records[:t.originalCount] {
		total += r.Abundance
	}
	return total
}

// ProbabilitySum returns the immigration-probability sum over the original
// records. It is 1 within floating tolerance for any generated table.
func (t *Table) ProbabilitySum() float64 {
	sum := 0.0
	for _, r := range t.records[:t.originalCount] {
		sum += r.ImmigrationProbability
	}
	return sum
}

// Tree returns the phylogeny labeling the original species, if one was
// generated or parsed.
func (t *Table) Tree() *phylo.Tree {
	return t.tree
}

// Newick returns the textual serialization of the phylogeny, or "" when
// none was produced.
func (t *Table) Newick() string {
	return t.newick
}

// TreeHeight returns the phylogeny height read from a full-format input
// file, or computed from a generated tree.
func (t *Table) TreeHeight() float64 {
	return t.treeHeight
}

// addSpecies appends a non-colonizing record for a locally speciated
// lineage: abundance 0, immigration probability 0. Duplicate ids are
// rejected rather than silently appended.
func (t *Table) addSpecies(id string, traitValue float64) error {
	if _, dup := t.index[id]; dup {
		return errors.Wrapf(errors.ErrConflict, "species %q already present in the pool", id)
	}
	t.index[id] = len(t.records)
	t.records = append(t.records, Record{
		ID:                     id,
		Abundance:              0,
		ImmigrationProbability: 0,
		TraitValue:             traitValue,
	})
	return nil
}
