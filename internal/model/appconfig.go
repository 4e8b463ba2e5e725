package model

// Default catalog documents of the reference data set.
const (
	DefaultProductsURL = "https://raw.githubusercontent.com/Vistegra/test-calc-js/master/data/data.json"
	DefaultRulesURL    = "https://raw.githubusercontent.com/Vistegra/test-calc-js/master/data/config.json"
)

// AppConfig holds application-wide settings.
type AppConfig struct {
	// Catalog source. File paths take precedence over URLs when both are set.
	ProductsURL  string `json:"products_url"`
	RulesURL     string `json:"rules_url"`
	ProductsFile string `json:"products_file"`
	RulesFile    string `json:"rules_file"`

	// HTTP source behaviour
	RequestTimeoutMs int `json:"request_timeout_ms"`
	RateLimitRPS     int `json:"rate_limit_rps"`
	MaxAttempts      int `json:"max_attempts"` // 1 = no retry

	// Application preferences
	LogMode       string   `json:"log_mode"` // "development" or "production"
	ExportDir     string   `json:"export_dir"`
	RecentExports []string `json:"recent_exports"`
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		ProductsURL:      DefaultProductsURL,
		RulesURL:         DefaultRulesURL,
		RequestTimeoutMs: 30000,
		RateLimitRPS:     5,
		MaxAttempts:      1,
		LogMode:          "development",
		ExportDir:        "out",
		RecentExports:    []string{},
	}
}

// UsesFiles reports whether the catalog should be read from local files.
func (c AppConfig) UsesFiles() bool {
	return c.ProductsFile != "" && c.RulesFile != ""
}

// AddRecentExport records path at the front of RecentExports, keeping at most limit entries.
func (c *AppConfig) AddRecentExport(path string, limit int) {
	out := []string{path}
	for _, p := range c.RecentExports {
		if p != path {
			out = append(out, p)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	c.RecentExports = out
}
