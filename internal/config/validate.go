package config

import (
	"fmt"
	"regexp"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePairing(); err != nil {
		return err
	}
	if err := c.validateConverter(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePairing() error {
	switch c.Pairing.Mode {
	case "edge", "all":
	default:
		return fmt.Errorf("pairing.mode must be %q or %q, got %q", "edge", "all", c.Pairing.Mode)
	}
	switch c.Pairing.SubjectGroup {
	case "exact", "first_token", "regex":
	default:
		return fmt.Errorf("pairing.subject_group must be one of exact, first_token, regex; got %q", c.Pairing.SubjectGroup)
	}
	if c.Pairing.SubjectGroup == "regex" {
		if c.Pairing.SubjectRegex == "" {
			return fmt.Errorf("pairing.subject_regex must be set when pairing.subject_group is %q", "regex")
		}
		if _, err := regexp.Compile(c.Pairing.SubjectRegex); err != nil {
			return fmt.Errorf("pairing.subject_regex: %w", err)
		}
	}
	return nil
}

func (c *Config) validateConverter() error {
	if c.Converter.Binary == "" {
		return fmt.Errorf("converter.binary must be set")
	}
	return nil
}
