package services

import (
	"encoding/json"
	"fmt"
	"os"

	"maintex-gateway/internal/core/domain"
)

// LabelService answers label-count questions from the conversion table.
// The table is loaded once and never mutated afterwards.
type LabelService struct {
	table *domain.LabelTable
}

// NewLabelService wraps an already loaded table
func NewLabelService(table *domain.LabelTable) *LabelService {
	if table == nil {
		table = domain.DefaultLabelTable()
	}
	table.Normalize()
	return &LabelService{table: table}
}

// LoadLabelTable reads a JSON table from path; an empty path yields the
// built-in default.
func LoadLabelTable(path string) (*domain.LabelTable, error) {
	if path == "" {
		return domain.DefaultLabelTable(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: label table: %v", domain.ErrConfiguration, err)
	}

	table := &domain.LabelTable{}
	if err := json.Unmarshal(data, table); err != nil {
		return nil, fmt.Errorf("%w: label table %s: %v", domain.ErrConfiguration, path, err)
	}
	if table.UOMAliases == nil {
		table.UOMAliases = map[string]string{}
	}
	if table.DefaultLabelsPerUOM == nil {
		table.DefaultLabelsPerUOM = map[string]float64{}
	}
	if table.Products == nil {
		table.Products = map[string]domain.ProductLabels{}
	}
	return table, nil
}

// Table returns the loaded table
func (s *LabelService) Table() *domain.LabelTable {
	return s.table
}

// LabelsFor evaluates an order line whose quantity is still text.
func (s *LabelService) LabelsFor(sku, uom, rawQty string) (domain.LabelResult, bool) {
	qty, err := domain.ParseQuantity(rawQty)
	if err != nil {
		return domain.LabelResult{}, false
	}
	return s.table.LabelsFor(sku, uom, qty)
}
