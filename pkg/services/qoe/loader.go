package qoe

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Adjustments maps fiscal year -> adjustment label -> signed amount. The
// map is consumed verbatim by the KPI calculator; no validation of label
// uniqueness or sign beyond arithmetic use.
type Adjustments map[int]map[string]decimal.Decimal

// Load reads a QoE adjustments YAML file of the form:
//
//	2023:
//	  "One-off legal fee": 50000
//	  "Owner compensation normalization": -120000
func Load(path string) (Adjustments, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading QoE adjustments: %w", err)
	}
	return Parse(data)
}

// Parse decodes QoE adjustments from YAML bytes.
func Parse(data []byte) (Adjustments, error) {
	// Amounts may be written quoted or as YAML numbers; decode loosely and
	// let decimal do the parsing so "50000.50" keeps its exact value.
	var raw map[int]map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing QoE adjustments: %w", err)
	}

	adjustments := make(Adjustments, len(raw))
	for year, labels := range raw {
		adjustments[year] = make(map[string]decimal.Decimal, len(labels))
		for label, amount := range labels {
			d, err := decimal.NewFromString(fmt.Sprintf("%v", amount))
			if err != nil {
				return nil, fmt.Errorf("QoE adjustment %q (year %d): invalid amount %v", label, year, amount)
			}
			adjustments[year][label] = d
		}
	}
	return adjustments, nil
}
