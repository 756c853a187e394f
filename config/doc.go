// Package config loads governor service configuration from layered JSON
// files. Defaults apply first, then each file layer in order, then a small
// set of GOVERNOR_* environment overrides; later sources win.
//
//	loader := config.NewLoader()
//	loader.AddLayer("/etc/governor/base.json")
//	loader.AddLayer("/etc/governor/local.json")
//	cfg, err := loader.Load()
//
// Durations are written as Go duration strings ("500ms", "2s"). Validation
// runs by default and returns classified configuration errors, so callers
// can distinguish missing fields from invalid values.
package config
