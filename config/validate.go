package config

import "github.com/archipelago-eco/archipelago/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Metacommunity.Source == "" {
		return errors.New("metacommunity.source cannot be empty")
	}

	if c.Metacommunity.LognormShape <= 0 {
		return errors.Newf("metacommunity.lognorm_shape must be > 0, got %g", c.Metacommunity.LognormShape)
	}

	// Database path is optional - empty falls back to the default.

	return nil
}
