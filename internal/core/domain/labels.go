package domain

import (
	"math"
	"strconv"
	"strings"
)

// LabelTable maps order lines to bottle-label counts.
type LabelTable struct {
	Version             int                      `json:"version"`
	UOMAliases          map[string]string        `json:"uomAliases"`
	DefaultLabelsPerUOM map[string]float64       `json:"defaultLabelsPerUom"`
	Products            map[string]ProductLabels `json:"products"`
}

// ProductLabels holds SKU-specific multipliers keyed by normalized UOM.
type ProductLabels struct {
	Name string             `json:"name,omitempty"`
	UOM  map[string]float64 `json:"uom"`
}

// LabelResult is the outcome of a successful lookup.
type LabelResult struct {
	LabelsPerUnit float64 `json:"labels_per_unit"`
	LabelsNeeded  float64 `json:"labels_needed"`
}

// DefaultLabelTable returns the shipped table: unit spellings normalized to
// the schedule's CS/EA/PL/DR codes and one label per each, pail and drum.
// Cases vary by pack count and have no default.
func DefaultLabelTable() *LabelTable {
	return &LabelTable{
		Version: 1,
		UOMAliases: map[string]string{
			"CASE": "CS", "CASES": "CS", "CS": "CS",
			"EACH": "EA", "EA": "EA",
			"PAIL": "PL", "PAILS": "PL", "PL": "PL",
			"DRUM": "DR", "DRUMS": "DR", "DR": "DR",
		},
		DefaultLabelsPerUOM: map[string]float64{"EA": 1, "PL": 1, "DR": 1},
		Products:            map[string]ProductLabels{},
	}
}

// Normalize upper-cases alias and unit keys so lookups need no further folding.
func (t *LabelTable) Normalize() {
	aliases := make(map[string]string, len(t.UOMAliases))
	for k, v := range t.UOMAliases {
		aliases[strings.ToUpper(strings.TrimSpace(k))] = strings.ToUpper(strings.TrimSpace(v))
	}
	t.UOMAliases = aliases

	defaults := make(map[string]float64, len(t.DefaultLabelsPerUOM))
	for k, v := range t.DefaultLabelsPerUOM {
		defaults[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	t.DefaultLabelsPerUOM = defaults

	products := make(map[string]ProductLabels, len(t.Products))
	for sku, p := range t.Products {
		units := make(map[string]float64, len(p.UOM))
		for k, v := range p.UOM {
			units[strings.ToUpper(strings.TrimSpace(k))] = v
		}
		products[strings.TrimSpace(sku)] = ProductLabels{Name: p.Name, UOM: units}
	}
	t.Products = products
}

// NormalizeUOM trims, upper-cases and resolves aliases.
func (t *LabelTable) NormalizeUOM(raw string) string {
	u := strings.ToUpper(strings.TrimSpace(raw))
	if u == "" {
		return ""
	}
	if alias, ok := t.UOMAliases[u]; ok {
		return alias
	}
	return u
}

// LabelsFor computes the labels needed for qty units of sku in uom.
// A SKU override shadows the unit default even when the override is unusable.
func (t *LabelTable) LabelsFor(sku, uom string, qty float64) (LabelResult, bool) {
	sku = strings.TrimSpace(sku)
	uom = t.NormalizeUOM(uom)
	if sku == "" || uom == "" || !finite(qty) {
		return LabelResult{}, false
	}

	var perUnit float64
	var found bool
	if p, ok := t.Products[sku]; ok {
		perUnit, found = p.UOM[uom]
	}
	if !found {
		perUnit, found = t.DefaultLabelsPerUOM[uom]
	}
	if !found || !finite(perUnit) || perUnit <= 0 {
		return LabelResult{}, false
	}

	return LabelResult{LabelsPerUnit: perUnit, LabelsNeeded: qty * perUnit}, true
}

// ParseQuantity reads an ordered quantity such as "1,250" or "2.5". A blank
// cell is a quantity of zero.
func ParseQuantity(raw string) (float64, error) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(n) {
		return 0, ErrInvalidQuantity
	}
	return n, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
