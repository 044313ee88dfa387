package metacommunity

import (
	"math/rand"
	"strconv"
	"strings"

	"github.com/archipelago-eco/archipelago/errors"
)

// Generative parameter names.
const (
	ParamSpeciesRichness    = "S_m"
	ParamTotalIndividuals   = "J_m"
	ParamSpeciationRate     = "speciation_rate"
	ParamDeathProportion    = "death_proportion"
	ParamTraitRate          = "trait_rate_meta"
	ParamEcologicalStrength = "ecological_strength"
)

// paramOrder is the canonical parameter ordering, used for deterministic
// iteration and params-file output.
var paramOrder = []string{
	ParamSpeciesRichness,
	ParamTotalIndividuals,
	ParamSpeciationRate,
	ParamDeathProportion,
	ParamTraitRate,
	ParamEcologicalStrength,
}

// ParamDescriptions holds the one-line description of each parameter.
var ParamDescriptions = map[string]string{
	ParamSpeciesRichness:    "Number of species in the regional pool",
	ParamTotalIndividuals:   "Total # of individuals in the regional pool",
	ParamSpeciationRate:     "Speciation rate of metacommunity",
	ParamDeathProportion:    "Proportion of speciation rate to be extinction rate",
	ParamTraitRate:          "Trait evolution rate parameter for metacommunity",
	ParamEcologicalStrength: "Strength of community assembly process on phenotypic change",
}

// defaultParams are the initial resolved values.
var defaultParams = map[string]float64{
	ParamSpeciesRichness:    100,
	ParamTotalIndividuals:   750000,
	ParamSpeciationRate:     2,
	ParamDeathProportion:    0.7,
	ParamTraitRate:          2,
	ParamEcologicalStrength: 5,
}

// ParameterStore holds the generative parameters. Each parameter has a
// current resolved value and optionally a prior range [low, high]; when a
// prior is configured, Resolve draws a fresh uniform sample from it and
// that sample becomes the current value.
type ParameterStore struct {
	current  map[string]float64
	priors   map[string][2]float64
	resolved map[string]bool
}

// NewParameterStore returns a store populated with the model defaults.
func NewParameterStore() *ParameterStore {
	current := make(map[string]float64, len(defaultParams))
	for k, v := range defaultParams {
		current[k] = v
	}
	return &ParameterStore{
		current:  current,
		priors:   make(map[string][2]float64),
		resolved: make(map[string]bool),
	}
}

// Names returns the parameter names in canonical order.
func (p *ParameterStore) Names() []string {
	names := make([]string, len(paramOrder))
	copy(names, paramOrder)
	return names
}

// Set configures a parameter with either a fixed scalar or a two-element
// prior range. Accepted values: any numeric type, a numeric string
// ("2.5"), a range string ("1.0-3.0" or "1.0,3.0"), or a two-element
// float64 slice. Setting a scalar clears any configured prior.
func (p *ParameterStore) Set(name string, value interface{}) error {
	if _, ok := p.current[name]; !ok {
		return errors.NewConfigurationError("unknown parameter %q", name)
	}

	scalar, rng, isRange, err := coerceParamValue(value)
	if err != nil {
		return errors.Wrapf(err, "bad value for parameter %q", name)
	}

	if isRange {
		if rng[0] > rng[1] {
			return errors.NewConfigurationError("parameter %q range low %g exceeds high %g", name, rng[0], rng[1])
		}
		if err := validateParamValue(name, rng[0]); err != nil {
			return err
		}
		if err := validateParamValue(name, rng[1]); err != nil {
			return err
		}
		p.priors[name] = rng
		p.resolved[name] = false
		return nil
	}

	if err := validateParamValue(name, scalar); err != nil {
		return err
	}
	p.current[name] = scalar
	delete(p.priors, name)
	delete(p.resolved, name)
	return nil
}

// Get returns the current resolved value of a parameter.
func (p *ParameterStore) Get(name string) (float64, error) {
	v, ok := p.current[name]
	if !ok {
		return 0, errors.NewConfigurationError("unknown parameter %q", name)
	}
	return v, nil
}

// GetInt returns the current resolved value truncated to an integer.
func (p *ParameterStore) GetInt(name string) (int, error) {
	v, err := p.Get(name)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// Prior returns the configured prior range for a parameter, if any.
func (p *ParameterStore) Prior(name string) (low, high float64, ok bool) {
	r, ok := p.priors[name]
	if !ok {
		return 0, 0, false
	}
	return r[0], r[1], true
}

// Resolve draws a fresh uniform sample from the parameter's prior range
// (inclusive) and stores it as the current value. Parameters without a
// prior return their fixed value unchanged.
func (p *ParameterStore) Resolve(rng *rand.Rand, name string) (float64, error) {
	v, ok := p.current[name]
	if !ok {
		return 0, errors.NewConfigurationError("unknown parameter %q", name)
	}
	r, hasPrior := p.priors[name]
	if !hasPrior {
		return v, nil
	}
	sampled := r[0] + (r[1]-r[0])*rng.Float64()
	p.current[name] = sampled
	p.resolved[name] = true
	return sampled, nil
}

// ResampleAll re-resolves every parameter with a configured prior.
func (p *ParameterStore) ResampleAll(rng *rand.Rand) {
	for _, name := range paramOrder {
		if _, ok := p.priors[name]; ok {
			p.Resolve(rng, name)
		}
	}
}

// resolvePending resolves parameters whose prior was configured but never
// sampled, so a generation pass always works with concrete values.
func (p *ParameterStore) resolvePending(rng *rand.Rand) {
	for _, name := range paramOrder {
		if _, ok := p.priors[name]; ok && !p.resolved[name] {
			p.Resolve(rng, name)
		}
	}
}

// validateParamValue enforces the per-parameter domains.
func validateParamValue(name string, v float64) error {
	switch name {
	case ParamSpeciesRichness, ParamTotalIndividuals:
		if v < 1 {
			return errors.NewConfigurationError("parameter %q must be >= 1, got %g", name, v)
		}
	case ParamDeathProportion:
		if v < 0 || v > 1 {
			return errors.NewConfigurationError("parameter %q must be in [0, 1], got %g", name, v)
		}
	case ParamSpeciationRate, ParamTraitRate, ParamEcologicalStrength:
		if v < 0 {
			return errors.NewConfigurationError("parameter %q must be >= 0, got %g", name, v)
		}
	}
	return nil
}

// coerceParamValue interprets a configured value as either a scalar or a
// two-element range.
func coerceParamValue(value interface{}) (scalar float64, rng [2]float64, isRange bool, err error) {
	switch v := value.(type) {
	case float64:
		return v, rng, false, nil
	case float32:
		return float64(v), rng, false, nil
	case int:
		return float64(v), rng, false, nil
	case int32:
		return float64(v), rng, false, nil
	case int64:
		return float64(v), rng, false, nil
	case uint:
		return float64(v), rng, false, nil
	case [2]float64:
		return 0, v, true, nil
	case []float64:
		if len(v) != 2 {
			return 0, rng, false, errors.NewConfigurationError("range must have exactly 2 elements, got %d", len(v))
		}
		return 0, [2]float64{v[0], v[1]}, true, nil
	case []interface{}:
		if len(v) != 2 {
			return 0, rng, false, errors.NewConfigurationError("range must have exactly 2 elements, got %d", len(v))
		}
		lo, _, _, err := coerceParamValue(v[0])
		if err != nil {
			return 0, rng, false, err
		}
		hi, _, _, err := coerceParamValue(v[1])
		if err != nil {
			return 0, rng, false, err
		}
		return 0, [2]float64{lo, hi}, true, nil
	case string:
		return parseParamString(v)
	default:
		return 0, rng, false, errors.NewConfigurationError("value %v (%T) is not numeric", value, value)
	}
}

// parseParamString parses "2.5" as a scalar and "1.0-3.0" or "1.0,3.0" as
// a range. A leading "-" belongs to a negative scalar, not a separator.
func parseParamString(s string) (scalar float64, rng [2]float64, isRange bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, rng, false, errors.NewConfigurationError("empty parameter value")
	}

	sep := ""
	if strings.Contains(s, ",") {
		sep = ","
	} else if strings.Contains(s[1:], "-") {
		sep = "-"
	}

	if sep != "" {
		var parts []string
		if sep == "," {
			parts = strings.SplitN(s, ",", 2)
		} else {
			// Split on the first "-" past position 0 to keep a possible
			// negative sign on the low bound.
			i := strings.Index(s[1:], "-") + 1
			parts = []string{s[:i], s[i+1:]}
		}
		lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return 0, rng, false, errors.NewConfigurationError("invalid range bound %q", parts[0])
		}
		hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return 0, rng, false, errors.NewConfigurationError("invalid range bound %q", parts[1])
		}
		return 0, [2]float64{lo, hi}, true, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, rng, false, errors.NewConfigurationError("value %q is not numeric", s)
	}
	return v, rng, false, nil
}
