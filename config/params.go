package config

import (
	"fmt"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/archipelago-eco/archipelago/errors"
	"github.com/archipelago-eco/archipelago/metacommunity"
)

// paramsDocument is the TOML layout of an exported parameter block. Values
// are strings so a prior range can be written as "low-high".
type paramsDocument struct {
	Metacommunity paramsBlock `toml:"metacommunity"`
}

type paramsBlock struct {
	SpeciesRichness    string `toml:"s_m" comment:"Number of species in the regional pool"`
	TotalIndividuals   string `toml:"j_m" comment:"Total # of individuals in the regional pool"`
	SpeciationRate     string `toml:"speciation_rate" comment:"Speciation rate of metacommunity"`
	DeathProportion    string `toml:"death_proportion" comment:"Proportion of speciation rate to be extinction rate"`
	TraitRate          string `toml:"trait_rate_meta" comment:"Trait evolution rate parameter for metacommunity"`
	EcologicalStrength string `toml:"ecological_strength" comment:"Strength of community assembly process on phenotypic change"`
}

// ExportParams serializes a parameter store as a TOML metacommunity block,
// reloadable through LoadFromFile. With full set, parameters carrying a
// prior range are written as "low-high" instead of their current resolved
// value.
func ExportParams(store *metacommunity.ParameterStore, full bool) ([]byte, error) {
	value := func(name string) (string, error) {
		if full {
			if low, high, ok := store.Prior(name); ok {
				return fmt.Sprintf("%s-%s", formatParam(low), formatParam(high)), nil
			}
		}
		v, err := store.Get(name)
		if err != nil {
			return "", err
		}
		return formatParam(v), nil
	}

	var doc paramsDocument
	fields := map[string]*string{
		metacommunity.ParamSpeciesRichness:    &doc.Metacommunity.SpeciesRichness,
		metacommunity.ParamTotalIndividuals:   &doc.Metacommunity.TotalIndividuals,
		metacommunity.ParamSpeciationRate:     &doc.Metacommunity.SpeciationRate,
		metacommunity.ParamDeathProportion:    &doc.Metacommunity.DeathProportion,
		metacommunity.ParamTraitRate:          &doc.Metacommunity.TraitRate,
		metacommunity.ParamEcologicalStrength: &doc.Metacommunity.EcologicalStrength,
	}
	for name, field := range fields {
		v, err := value(name)
		if err != nil {
			return nil, err
		}
		*field = v
	}

	out, err := toml.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling parameter block")
	}
	return out, nil
}

func formatParam(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
