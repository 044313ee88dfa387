package config

import (
	"github.com/spf13/viper"

	"github.com/archipelago-eco/archipelago/metacommunity"
)

// DefaultDatabasePath is the default SQLite snapshot database.
const DefaultDatabasePath = "archipelago.db"

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.path", DefaultDatabasePath)

	// Metacommunity defaults. Generative parameters default to the model
	// defaults baked into the parameter store; only the source and the
	// lognorm shape need concrete values here.
	v.SetDefault("metacommunity.source", metacommunity.KeywordLogSeries)
	v.SetDefault("metacommunity.lognorm_shape", metacommunity.DefaultLogNormShape)

	// Phylogenetic simulator defaults: empty command selects the
	// in-process birth-death simulator.
	v.SetDefault("phylo.command", "")
}
