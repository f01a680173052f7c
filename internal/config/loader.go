package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Paths helper for the config directory layout.
type Paths struct {
	BaseDir string // base directory, e.g. ./configs
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "profiles", "default.yaml")
}
func (p Paths) ProfilePath(profile string) string {
	return filepath.Join(p.BaseDir, "profiles", profile+".yaml")
}
func (p Paths) ProfilesDir() string {
	return filepath.Join(p.BaseDir, "profiles")
}

// Loader reads YAML rule tables and merges default → profile.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: profile name, "" for default only
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged loads the default table and overlays the named profile on
// top (profile optional, "" = default only). The merged RawConfig is
// cached until Invalidate.
func (l *Loader) LoadMerged(profile string) (RawConfig, error) {
	l.mu.RLock()
	if cfg, ok := l.cache[profile]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}

	merged := defCfg
	if profile != "" {
		profCfg, err := readYAML(l.paths.ProfilePath(profile))
		if err != nil {
			return RawConfig{}, fmt.Errorf("read profile %q: %w", profile, err)
		}
		merged = mergeRaw(defCfg, profCfg)
	}

	l.mu.Lock()
	l.cache[profile] = merged
	l.mu.Unlock()

	return merged, nil
}

// Invalidate clears the cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. A missing file is an error
// here - the default table is mandatory and profiles are named
// explicitly by the caller.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, fmt.Errorf("config file %s does not exist", path)
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, err
	}
	return cfg, nil
}

// mergeRaw overlays b on a: fields b sets win, table entries merge
// per-key, and a paths list provided by b replaces a's wholesale.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}
	if b.MaxTier != nil {
		out.MaxTier = b.MaxTier
	}

	if len(b.Rates) > 0 {
		out.Rates = mergeMap(a.Rates, b.Rates)
	}
	if len(b.Pity) > 0 {
		out.Pity = mergeMap(a.Pity, b.Pity)
	}

	switch {
	case a.Recovery == nil && b.Recovery != nil:
		c := *b.Recovery
		out.Recovery = &c
	case a.Recovery != nil && b.Recovery != nil:
		c := *a.Recovery
		if b.Recovery.Rate != nil {
			c.Rate = b.Recovery.Rate
		}
		if b.Recovery.Scrolls != nil {
			c.Scrolls = b.Recovery.Scrolls
		}
		out.Recovery = &c
	}

	switch {
	case a.Valks == nil && b.Valks != nil:
		c := *b.Valks
		out.Valks = &c
	case a.Valks != nil && b.Valks != nil:
		c := *a.Valks
		if b.Valks.Small != nil {
			c.Small = b.Valks.Small
		}
		if b.Valks.Large != nil {
			c.Large = b.Valks.Large
		}
		if b.Valks.Huge != nil {
			c.Huge = b.Valks.Huge
		}
		out.Valks = &c
	}

	if len(b.Paths) > 0 {
		out.Paths = append([]PathCfg(nil), b.Paths...)
	}

	switch {
	case a.Market == nil && b.Market != nil:
		c := *b.Market
		out.Market = &c
	case a.Market != nil && b.Market != nil:
		c := *a.Market
		if len(b.Market.Prices) > 0 {
			c.Prices = mergeMap(a.Market.Prices, b.Market.Prices)
		}
		if len(b.Market.Recipes) > 0 {
			c.Recipes = b.Market.Recipes
		}
		if b.Market.ScrollBundle != nil {
			c.ScrollBundle = b.Market.ScrollBundle
		}
		out.Market = &c
	}

	return out
}

func mergeMap[K comparable, V any](a, b map[K]V) map[K]V {
	out := make(map[K]V, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
