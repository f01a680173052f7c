package config

// Raw config loaded from YAML. Scalar fields are pointers so a profile
// can override only what it sets; missing table entries stay missing and
// are caught by validation - never defaulted.
type RawConfig struct {
	Version string `yaml:"version"`
	Notes   string `yaml:"notes,omitempty"`

	MaxTier *int            `yaml:"max_tier"`
	Rates   map[int]float64 `yaml:"rates"`
	Pity    map[int]int     `yaml:"pity"`

	Recovery *RecoveryCfg `yaml:"recovery,omitempty"`
	Valks    *ValksCfg    `yaml:"valks,omitempty"`
	Paths    []PathCfg    `yaml:"paths,omitempty"`
	Market   *MarketCfg   `yaml:"market,omitempty"`
}

type RecoveryCfg struct {
	Rate    *float64 `yaml:"rate"`
	Scrolls *int     `yaml:"scrolls_per_attempt"`
}

// ValksCfg carries the multiplicative booster ratios.
type ValksCfg struct {
	Small *float64 `yaml:"small"` // +10%
	Large *float64 `yaml:"large"` // +50%
	Huge  *float64 `yaml:"huge"`  // +100%
}

type PathCfg struct {
	EntryTier          int     `yaml:"entry_tier"`
	Length             int     `yaml:"length"`
	Rate               float64 `yaml:"rate"`
	Pity               int     `yaml:"pity"`
	CrystalsPerAttempt int     `yaml:"crystals_per_attempt"`
}

type MarketCfg struct {
	Prices       map[string]int64          `yaml:"prices,omitempty"`
	Recipes      map[string]map[string]int `yaml:"recipes,omitempty"`
	ScrollBundle *BundleCfg                `yaml:"scroll_bundle,omitempty"`
}

type BundleCfg struct {
	Size  *int   `yaml:"size"`
	Price *int64 `yaml:"price"`
}
