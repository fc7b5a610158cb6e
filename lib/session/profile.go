// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profiles is a parsed profiles file: named settings bundles that a
// single flag selects instead of repeating device, speed, and pacing
// options on every invocation.
type Profiles struct {
	Profiles map[string]Settings `yaml:"profiles"`
}

// DefaultProfilesPath returns where the profiles file lives:
// $MICROTERM_PROFILES when set, otherwise microterm/profiles.yaml
// under the user configuration directory.
func DefaultProfilesPath() (string, error) {
	if path := os.Getenv("MICROTERM_PROFILES"); path != "" {
		return path, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config directory: %w", err)
	}
	return filepath.Join(configDir, "microterm", "profiles.yaml"), nil
}

// LoadProfiles reads and parses the profiles file at path.
func LoadProfiles(path string) (*Profiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	var profiles Profiles
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("parse profiles file %s: %w", path, err)
	}
	return &profiles, nil
}

// Get returns the named profile. An unknown name produces an error
// listing the names the file defines.
func (p *Profiles) Get(name string) (Settings, error) {
	settings, ok := p.Profiles[name]
	if !ok {
		if len(p.Profiles) == 0 {
			return Settings{}, fmt.Errorf("profile %q not found (profiles file defines none)", name)
		}
		names := make([]string, 0, len(p.Profiles))
		for profileName := range p.Profiles {
			names = append(names, profileName)
		}
		sort.Strings(names)
		return Settings{}, fmt.Errorf("profile %q not found (available: %s)", name, strings.Join(names, ", "))
	}
	return settings, nil
}
