// Package config loads, normalizes, and validates neuroprep's TOML
// configuration.
//
// Configuration resolves from an explicit --config path, then
// ~/.config/neuroprep/config.toml, then ./neuroprep.toml. Missing files fall
// back to defaults; path fields are tilde-expanded and made absolute during
// normalization.
package config
