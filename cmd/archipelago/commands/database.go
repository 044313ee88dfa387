package commands

import (
	"database/sql"
	"math/rand"
	"time"

	"github.com/archipelago-eco/archipelago/config"
	"github.com/archipelago-eco/archipelago/errors"
	"github.com/archipelago-eco/archipelago/logger"
	"github.com/archipelago-eco/archipelago/storage"
)

// ConfigPath is an explicit configuration file path, set by the root
// --config flag. Empty means the usual search order (project file, user
// file, environment).
var ConfigPath string

// loadConfig loads and validates the archipelago configuration.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if ConfigPath != "" {
		cfg, err = config.LoadFromFile(ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// openDatabase opens and migrates the snapshot database configured in cfg.
// An empty configured path falls back to the default.
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	path := cfg.Database.Path
	if path == "" {
		path = config.DefaultDatabasePath
	}

	db, err := storage.Open(path, logger.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", path)
	}

	if err := storage.Migrate(db, logger.Logger); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to run migrations on %s", path)
	}

	return db, nil
}

// newRng seeds a generator from the --seed flag. Zero means a time-based
// seed; any other value gives reproducible runs.
func newRng(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Debugw("seeding random generator", "seed", seed)
	return rand.New(rand.NewSource(seed))
}
