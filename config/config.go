// Package config provides archipelago configuration via Viper. Settings are
// read from TOML files with environment-variable overrides under the
// ARCHIPELAGO prefix.
package config

import (
	"github.com/archipelago-eco/archipelago/metacommunity"
	"github.com/archipelago-eco/archipelago/phylo"
)

// Config is the root archipelago configuration.
type Config struct {
	Database      DatabaseConfig      `mapstructure:"database"`
	Metacommunity MetacommunityConfig `mapstructure:"metacommunity"`
	Phylo         PhyloConfig         `mapstructure:"phylo"`
}

// DatabaseConfig holds snapshot database settings.
type DatabaseConfig struct {
	// Path to the SQLite snapshot database.
	Path string `mapstructure:"path"`
}

// MetacommunityConfig holds the regional-pool generation settings. Each
// generative parameter is a string holding either a fixed value ("2.5") or
// an inclusive prior range ("1.0-3.0"); an empty string keeps the model
// default.
type MetacommunityConfig struct {
	// Source is a generation keyword (uniform, lognorm, logser) or a path
	// to a community specification file.
	Source string `mapstructure:"source"`

	SpeciesRichness    string `mapstructure:"s_m"`
	TotalIndividuals   string `mapstructure:"j_m"`
	SpeciationRate     string `mapstructure:"speciation_rate"`
	DeathProportion    string `mapstructure:"death_proportion"`
	TraitRate          string `mapstructure:"trait_rate_meta"`
	EcologicalStrength string `mapstructure:"ecological_strength"`

	// LognormShape is the shape parameter of the lognorm source.
	LognormShape float64 `mapstructure:"lognorm_shape"`
}

// PhyloConfig holds phylogenetic simulator settings.
type PhyloConfig struct {
	// Command is an external simulator command line. Empty selects the
	// in-process birth-death simulator.
	Command string `mapstructure:"command"`
}

// paramSettings returns the configured parameter strings keyed by
// parameter name, omitting empty ones.
func (m MetacommunityConfig) paramSettings() map[string]string {
	settings := map[string]string{
		metacommunity.ParamSpeciesRichness:    m.SpeciesRichness,
		metacommunity.ParamTotalIndividuals:   m.TotalIndividuals,
		metacommunity.ParamSpeciationRate:     m.SpeciationRate,
		metacommunity.ParamDeathProportion:    m.DeathProportion,
		metacommunity.ParamTraitRate:          m.TraitRate,
		metacommunity.ParamEcologicalStrength: m.EcologicalStrength,
	}
	for name, value := range settings {
		if value == "" {
			delete(settings, name)
		}
	}
	return settings
}

// NewPool builds an ungenerated metacommunity pool from the configuration:
// the source is resolved, configured parameters applied, and the external
// simulator attached when a command is configured.
func (c *Config) NewPool() (*metacommunity.Pool, error) {
	var opts []metacommunity.Option
	if c.Phylo.Command != "" {
		opts = append(opts, metacommunity.WithSimulator(&phylo.ExternalSimulator{Command: c.Phylo.Command}))
	}
	if c.Metacommunity.LognormShape > 0 {
		opts = append(opts, metacommunity.WithLogNormShape(c.Metacommunity.LognormShape))
	}

	pool, err := metacommunity.NewPool(c.Metacommunity.Source, opts...)
	if err != nil {
		return nil, err
	}
	for name, value := range c.Metacommunity.paramSettings() {
		if err := pool.Params().Set(name, value); err != nil {
			return nil, err
		}
	}
	return pool, nil
}
