package metacommunity

import (
	"math"

	"github.com/archipelago-eco/archipelago/errors"
	"github.com/archipelago-eco/archipelago/phylo"
)

// probabilityTolerance is the floating tolerance on the original-record
// immigration-probability sum.
const probabilityTolerance = 1e-9

// Restore rebuilds a ready-for-sampling pool from persisted records, e.g.
// a storage snapshot. The first originalCount records are the generated
// community and their immigration probabilities must sum to 1 within
// tolerance; any further records are extensions and must carry zero
// abundance and zero probability.
func Restore(source string, records []Record, originalCount int, newick string, treeHeight, filteringOptimum float64) (*Pool, error) {
	if originalCount < 1 || originalCount > len(records) {
		return nil, errors.NewGenerationError("original record count %d out of range for %d records", originalCount, len(records))
	}

	index := make(map[string]int, len(records))
	sum := 0.0
	for i, r := range records {
		if _, dup := index[r.ID]; dup {
			return nil, errors.NewGenerationError("duplicate species id %q in restored records", r.ID)
		}
		index[r.ID] = i
		if r.ImmigrationProbability < 0 {
			return nil, errors.NewGenerationError("negative immigration probability for %q", r.ID)
		}
		if i < originalCount {
			sum += r.ImmigrationProbability
		} else if r.Abundance != 0 || r.ImmigrationProbability != 0 {
			return nil, errors.NewGenerationError("extension record %q must have zero abundance and probability", r.ID)
		}
	}
	if math.Abs(sum-1) > probabilityTolerance {
		return nil, errors.NewGenerationError("immigration probabilities over %d original records sum to %g, want 1", originalCount, sum)
	}

	stored := make([]Record, len(records))
	copy(stored, records)

	state := StateGenerated
	if len(records) > originalCount {
		state = StateExtended
	}

	return &Pool{
		params:           restoredParams(originalCount),
		source:           restoreSource(source),
		sim:              &phylo.BirthDeathSimulator{},
		lognormShape:     DefaultLogNormShape,
		filteringOptimum: filteringOptimum,
		table: &Table{
			records:       stored,
			index:         index,
			originalCount: originalCount,
			newick:        newick,
			treeHeight:    treeHeight,
		},
		state: state,
	}, nil
}

// restoreSource maps a persisted source string back to a Source without
// re-checking file existence: the file a snapshot was generated from may
// no longer exist.
func restoreSource(s string) Source {
	switch s {
	case KeywordUniform:
		return Source{Kind: SourceUniform}
	case KeywordLogNormal:
		return Source{Kind: SourceLogNormal}
	case KeywordLogSeries:
		return Source{Kind: SourceLogSeries}
	}
	return Source{Kind: SourceFile, Path: s}
}

func restoredParams(richness int) *ParameterStore {
	params := NewParameterStore()
	params.current[ParamSpeciesRichness] = float64(richness)
	return params
}
