package registry

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum-optimism/infra/op-reporter/types"
	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/yaml.v3"
)

// Profile is a named set of report properties with an optional host
// override, applied to a run before normalization.
type Profile struct {
	Name       string            `yaml:"name"`
	Host       string            `yaml:"host,omitempty"`
	Properties map[string]string `yaml:"properties,omitempty"`
}

// profileConfig is the on-disk shape of a profile config file.
type profileConfig struct {
	Profiles []Profile `yaml:"profiles"`
}

// Registry holds the profiles loaded from a config file. It is
// immutable after construction, so lookups need no locking.
type Registry struct {
	config   Config
	profiles map[string]Profile
	names    []string
}

// Config holds the inputs for building a Registry.
type Config struct {
	Log               log.Logger
	ProfileConfigFile string
}

// NewRegistry loads and validates the profile config file.
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.ProfileConfigFile == "" {
		return nil, fmt.Errorf("profile config file is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
	}

	profiles, names, err := loadProfiles(cfg.ProfileConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	cfg.Log.Debug("Profile registry loaded", "profiles", names)

	return &Registry{
		config:   cfg,
		profiles: profiles,
		names:    names,
	}, nil
}

// Get returns the named profile.
func (r *Registry) Get(name string) (Profile, error) {
	profile, ok := r.profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q (have: %s)", name, strings.Join(r.names, ", "))
	}
	return profile, nil
}

// Names returns the profile names in config file order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// GetConfig exposes the config the registry was built with.
func (r *Registry) GetConfig() Config {
	return r.config
}

// Apply stamps the profile onto a run tree. The host override lands on
// the root; the property set lands on each top-level group, where
// normalization carries it into the flattened sections. Keys a group
// already carries are left alone, matching how propagation keeps the
// nearest value.
func (p Profile) Apply(root *types.Group) {
	if p.Host != "" {
		root.SetHost(p.Host)
	}
	if len(p.Properties) == 0 {
		return
	}
	for _, child := range root.Children() {
		group, ok := child.(*types.Group)
		if !ok {
			continue
		}
		for key, value := range p.Properties {
			if _, exists := group.Property(key); exists {
				continue
			}
			group.SetProperty(key, value)
		}
	}
}

// loadProfiles reads, validates and indexes a profile config file.
func loadProfiles(path string) (map[string]Profile, []string, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, nil, err
	}
	if err := validateProfiles(cfg.Profiles); err != nil {
		return nil, nil, fmt.Errorf("invalid profile config: %w", err)
	}

	profiles := make(map[string]Profile, len(cfg.Profiles))
	names := make([]string, 0, len(cfg.Profiles))
	for _, p := range cfg.Profiles {
		profiles[p.Name] = p
		names = append(names, p.Name)
	}
	return profiles, names, nil
}

// loadConfig reads one YAML profile config file.
func loadConfig(path string) (*profileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg profileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return &cfg, nil
}

// validateProfiles checks names are present and unique and property
// keys are non-empty.
func validateProfiles(profiles []Profile) error {
	seen := make(map[string]bool)
	for i, profile := range profiles {
		if profile.Name == "" {
			return fmt.Errorf("profile %d has no name", i)
		}
		if seen[profile.Name] {
			return fmt.Errorf("duplicate profile name %q", profile.Name)
		}
		seen[profile.Name] = true

		for key := range profile.Properties {
			if key == "" {
				return fmt.Errorf("profile %q has a property with an empty key", profile.Name)
			}
		}
	}
	return nil
}
