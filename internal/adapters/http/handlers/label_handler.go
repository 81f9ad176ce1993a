package handlers

import (
	"maintex-gateway/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// LabelHandler exposes the label conversion table
type LabelHandler struct {
	labels *services.LabelService
}

// NewLabelHandler creates a new label handler
func NewLabelHandler(labels *services.LabelService) *LabelHandler {
	return &LabelHandler{labels: labels}
}

// Table returns the whole conversion table for client-side use
// @Summary Label conversion table
// @Tags Labels
// @Produce json
// @Success 200 {object} domain.LabelTable
// @Router /api/label-conversions [get]
func (h *LabelHandler) Table(c *fiber.Ctx) error {
	return c.JSON(h.labels.Table())
}

// Lookup evaluates one order line
// @Summary Labels needed for an order line
// @Tags Labels
// @Produce json
// @Param sku query string true "Product SKU"
// @Param uom query string true "Unit of measure"
// @Param qty query string true "Quantity; thousands separators allowed"
// @Success 200 {object} map[string]interface{}
// @Router /api/labels [get]
func (h *LabelHandler) Lookup(c *fiber.Ctx) error {
	res, ok := h.labels.LabelsFor(c.Query("sku"), c.Query("uom"), c.Query("qty"))
	if !ok {
		return c.JSON(fiber.Map{"found": false})
	}
	return c.JSON(fiber.Map{
		"found":           true,
		"labels_per_unit": res.LabelsPerUnit,
		"labels_needed":   res.LabelsNeeded,
	})
}
