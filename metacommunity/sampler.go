package metacommunity

import (
	"math/rand"

	"github.com/archipelago-eco/archipelago/errors"
)

// sampleIndex performs one weighted categorical draw over the records'
// immigration probabilities. Records with zero probability, including
// every extension-added record, are structurally unreachable.
func (t *Table) sampleIndex(rng *rand.Rand) (int, error) {
	if t == nil || len(t.records) == 0 {
		return 0, errors.NewSamplingError("community table is empty")
	}

	u := rng.Float64()
	cumulative := 0.0
	last := -1
	for i, r := range t.records {
		if r.ImmigrationProbability <= 0 {
			continue
		}
		last = i
		cumulative += r.ImmigrationProbability
		if u < cumulative {
			return i, nil
		}
	}
	if last < 0 {
		return 0, errors.NewSamplingError("all immigration probabilities are zero across %d records", len(t.records))
	}
	// u landed in the floating-point slack above the cumulative sum; the
	// draw belongs to the final weighted record.
	return last, nil
}

// GetMigrant draws one colonist from the pool, returning its species id
// and trait value.
func (p *Pool) GetMigrant(rng *rand.Rand) (string, float64, error) {
	i, err := p.Table().sampleIndex(rng)
	if err != nil {
		return "", 0, err
	}
	r := p.table.records[i]
	return r.ID, r.TraitValue, nil
}

// GetNMigrants draws n independent colonists with replacement, returning
// ids and trait values in draw order.
func (p *Pool) GetNMigrants(rng *rand.Rand, n int) ([]string, []float64, error) {
	ids := make([]string, 0, n)
	traits := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		id, trait, err := p.GetMigrant(rng)
		if err != nil {
			return nil, nil, err
		}
		ids = append(ids, id)
		traits = append(traits, trait)
	}
	return ids, traits, nil
}
