// Package config loads encstatus settings.
//
// Settings come from layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  5. Environment Variables   │  ← ENCSTATUS_*, highest priority
//	├─────────────────────────────┤
//	│  4. Explicit File           │  ← --config
//	├─────────────────────────────┤
//	│  3. Project                 │  ← <workspace>/.encstatus/config.toml
//	├─────────────────────────────┤
//	│  2. User                    │  ← ~/.config/encstatus/config.{toml,yaml}
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← lowest priority
//	└─────────────────────────────┘
//
// Each layer is read into a generic map by the loader sub-package, the maps
// are deep-merged, and the result is decoded onto the defaults with
// mapstructure.
//
// # Basic Usage
//
//	cfg, err := config.Load(config.WithProjectConfigDir(root))
//	if err != nil {
//		return err
//	}
//	det := cfg.Detection.NewDetector(logger)
package config
