package handlers

import (
	"errors"
	"path/filepath"

	"maintex-gateway/internal/adapters/http/middleware"
	"maintex-gateway/internal/adapters/http/session"
	"maintex-gateway/internal/core/domain"
	"maintex-gateway/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// SchedulePage is the protected page served at /schedule.
const SchedulePage = "schedule.html"

// ScheduleHandler serves the schedule page and its workbook
type ScheduleHandler struct {
	schedule     *services.ScheduleService
	sessions     *session.Manager
	protectedDir string
	log          *logrus.Logger
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(schedule *services.ScheduleService, sessions *session.Manager, protectedDir string, log *logrus.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		schedule:     schedule,
		sessions:     sessions,
		protectedDir: protectedDir,
		log:          log,
	}
}

// Page serves the schedule viewer
// @Summary Schedule page
// @Tags Schedule
// @Produce html
// @Success 200 {string} string "HTML page"
// @Success 302 {string} string "Redirect to /login when signed out"
// @Router /schedule [get]
func (h *ScheduleHandler) Page(c *fiber.Ctx) error {
	return c.SendFile(filepath.Join(h.protectedDir, SchedulePage))
}

// Export returns the production schedule workbook
// @Summary Production schedule workbook
// @Description XLSX export of the configured spreadsheet. Served from cache when fresh.
// @Tags Schedule
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file "Workbook"
// @Failure 401 {object} response.Response "No usable Google token"
// @Failure 403 {object} response.Response "No access to the document"
// @Failure 500 {object} response.Response "Upstream failure"
// @Router /api/production-schedule.xlsx [get]
func (h *ScheduleHandler) Export(c *fiber.Ctx) error {
	caller := domain.Caller{Identity: middleware.Identity(c)}
	if h.schedule.Source().PerCaller() {
		caller.Tokens = h.sessions.Tokens(c)
	}

	data, err := h.schedule.Fetch(c.UserContext(), caller)
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			h.sessions.Destroy(c)
		}
		h.log.WithError(err).WithFields(logrus.Fields{
			"identity": caller.Identity,
			"source":   h.schedule.Source(),
		}).Warn("schedule export failed")
		return err
	}

	c.Set(fiber.HeaderContentType, services.XLSXContentType)
	return c.Send(data)
}
