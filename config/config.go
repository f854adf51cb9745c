package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/gridpulse/core/dispatch"
	"github.com/kilianp07/gridpulse/core/metrics"
	"github.com/kilianp07/gridpulse/core/price"
	"github.com/kilianp07/gridpulse/core/price/feedmock"
	"github.com/kilianp07/gridpulse/infra/llm"
	"github.com/kilianp07/gridpulse/infra/monitoring"
	"github.com/kilianp07/gridpulse/infra/mqtt"
)

type Config struct {
	Data     DataConfig      `json:"data"`
	Price    price.Config    `json:"price"`
	FeedMock feedmock.Config `json:"feed_mock"`
	Dispatch dispatch.Config `json:"dispatch"`
	Brief    llm.Config      `json:"brief"`
	Confirm  llm.Config      `json:"confirm"`
	API      APIConfig       `json:"api"`
	Metrics  metrics.Config  `json:"metrics"`
	MQTT     mqtt.Config     `json:"mqtt"`
	Logging  LoggingConfig   `json:"logging"`

	Monitoring monitoring.Config `json:"monitoring"`
}

// Load reads path (YAML or JSON) and applies K_ environment overrides, where
// a double underscore separates levels: K_BRIEF__API_KEY sets brief.api_key.
// An empty path loads defaults and the environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Data.SetDefaults()
	c.Price.SetDefaults()
	c.Dispatch.SetDefaults()
	c.API.SetDefaults()
	c.Logging.SetDefaults()
	c.Monitoring.SetDefaults()
}

// Validate checks every section and names the failing one.
func (c Config) Validate() error {
	if err := c.Data.Validate(); err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if err := c.Price.Validate(); err != nil {
		return fmt.Errorf("price: %w", err)
	}
	if err := c.Dispatch.Validate(); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Monitoring.Validate(); err != nil {
		return fmt.Errorf("monitoring: %w", err)
	}
	return nil
}
