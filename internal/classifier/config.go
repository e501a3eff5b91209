package classifier

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultMinSignalMatches is the minimum number of distinct cluster terms a
// text segment must contain before the segment counts toward a signal flag.
// Requiring two distinct terms suppresses single-keyword false positives
// ("debt" alone appears in routine market coverage).
const DefaultMinSignalMatches = 2

// Config holds the tunable classification parameters: the jurisdiction
// keyword list used for the relevance decision and the per-signal term
// clusters used for signal tagging.
type Config struct {
	// Keywords is the fallback relevance keyword list. At run time the
	// coordinator passes the list from the settings store instead; this one
	// seeds the store and serves tests.
	Keywords []string `yaml:"keywords"`

	// MinSignalMatches is the distinct-term threshold for signal tagging.
	MinSignalMatches int `yaml:"min_signal_matches"`

	// SignalClusters maps signal names to their term clusters. Unknown signal
	// names are rejected at load time to keep the signal set closed.
	SignalClusters map[string][]string `yaml:"signal_clusters"`
}

// Known signal names, matching entity.SignalFlags fields.
const (
	SignalFinancialDecline        = "financial_decline"
	SignalFraud                   = "fraud"
	SignalMisstatedFinancials     = "misstated_financials"
	SignalShareholderIssues       = "shareholder_issues"
	SignalDirectorDuties          = "director_duties"
	SignalRegulatoryInvestigation = "regulatory_investigation"
)

var knownSignals = map[string]bool{
	SignalFinancialDecline:        true,
	SignalFraud:                   true,
	SignalMisstatedFinancials:     true,
	SignalShareholderIssues:       true,
	SignalDirectorDuties:          true,
	SignalRegulatoryInvestigation: true,
}

// DefaultConfig returns the compiled-in classification configuration for the
// Cayman Islands regulatory domain.
func DefaultConfig() Config {
	return Config{
		Keywords: []string{
			"Cayman Islands",
			"CIMA",
			"Cayman",
			"Grand Court",
			"Registrar of Companies",
			"Cayman Islands Monetary Authority",
		},
		MinSignalMatches: DefaultMinSignalMatches,
		SignalClusters: map[string][]string{
			SignalFinancialDecline: {
				"petition", "liquidator", "liquidation", "winding up", "wind up",
				"insolvency", "insolvent", "receivership", "debt", "creditor",
				"default", "restructuring",
			},
			SignalFraud: {
				"fraud", "fraudulent", "ponzi", "embezzlement", "misappropriation",
				"money laundering", "deception", "scheme",
			},
			SignalMisstatedFinancials: {
				"misstated", "restatement", "accounting irregularities", "overstated",
				"understated", "audit", "auditor resigned", "financial statements",
			},
			SignalShareholderIssues: {
				"shareholder", "minority shareholder", "oppression", "derivative action",
				"dispute", "buyout", "fair value", "dissenting",
			},
			SignalDirectorDuties: {
				"director", "fiduciary", "breach of duty", "duty of care",
				"disqualification", "officer", "negligence",
			},
			SignalRegulatoryInvestigation: {
				"investigation", "enforcement", "regulator", "regulatory", "sanction",
				"fine", "penalty", "probe", "subpoena",
			},
		},
	}
}

// LoadConfig reads classification configuration from a YAML file, filling any
// missing fields from DefaultConfig. An empty path yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read classifier config: %w", err)
	}

	var loaded Config
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		return Config{}, fmt.Errorf("parse classifier config: %w", err)
	}

	if len(loaded.Keywords) > 0 {
		cfg.Keywords = loaded.Keywords
	}
	if loaded.MinSignalMatches > 0 {
		cfg.MinSignalMatches = loaded.MinSignalMatches
	}
	if len(loaded.SignalClusters) > 0 {
		for name := range loaded.SignalClusters {
			if !knownSignals[name] {
				return Config{}, fmt.Errorf("unknown signal cluster %q", name)
			}
		}
		for name, terms := range loaded.SignalClusters {
			cfg.SignalClusters[name] = terms
		}
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if len(c.Keywords) == 0 {
		return fmt.Errorf("classifier config: at least one keyword is required")
	}
	if c.MinSignalMatches < 1 {
		return fmt.Errorf("classifier config: min_signal_matches must be >= 1, got %d", c.MinSignalMatches)
	}
	return nil
}
