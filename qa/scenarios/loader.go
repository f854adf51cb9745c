package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Expected is the session outcome a scenario asserts once the clock has run
// past the accrual window.
type Expected struct {
	State         string   `yaml:"state"`
	LedgerEntries int      `yaml:"ledger_entries"`
	AccrualTicks  int      `yaml:"accrual_ticks"`
	Zones         []string `yaml:"zones,omitempty"`
	MinBatteries  int      `yaml:"min_batteries,omitempty"`
}

// Scenario drives one operator session against the bundled catalog.
type Scenario struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description,omitempty"`
	Select       string   `yaml:"select"`
	Price        float64  `yaml:"price"`
	BriefError   string   `yaml:"brief_error,omitempty"`
	ConfirmError string   `yaml:"confirm_error,omitempty"`
	Expected     Expected `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Select == "" {
		return nil, fmt.Errorf("scenario %s: select is required", path)
	}
	if sc.Name == "" {
		sc.Name = path
	}
	return &sc, nil
}
