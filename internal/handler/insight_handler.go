package handler

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eduflex-api/internal/dto"
	"github.com/noah-isme/eduflex-api/internal/middleware"
	"github.com/noah-isme/eduflex-api/internal/models"
	"github.com/noah-isme/eduflex-api/internal/service"
	"github.com/noah-isme/eduflex-api/internal/utils"
)

// InsightHandler wires the performance insight HTTP routes.
type InsightHandler struct {
	engine  service.InsightEngine
	service service.InsightService
	logger  zerolog.Logger
	now     func() time.Time
}

// NewInsightHandler constructs the handler.
func NewInsightHandler(engine service.InsightEngine, insightService service.InsightService, logger zerolog.Logger) *InsightHandler {
	return &InsightHandler{
		engine:  engine,
		service: insightService,
		logger:  logger.With().Str("component", "insight_handler").Logger(),
		now:     time.Now,
	}
}

// Register attaches insight endpoints and their role guards to the router group.
func (h *InsightHandler) Register(router fiber.Router) {
	router.Post("/generate",
		middleware.RequireRole(models.RoleProfessor, models.RoleAdmin), h.generate)
	router.Get("/student/:studentId",
		middleware.RequireRole(models.RoleProfessor, models.RoleAdmin, models.RoleStudent), h.listForStudent)
	router.Post("/:insightId/suggestions",
		middleware.RequireRole(models.RoleProfessor), h.addSuggestion)
	router.Patch("/:insightId/suggestions/:suggId/approve",
		middleware.RequireRole(models.RoleProfessor, models.RoleAdmin), h.approveSuggestion)
	router.Get("/:studentId/suggestions",
		middleware.RequireRole(models.RoleProfessor, models.RoleAdmin, models.RoleStudent), h.listSuggestions)
}

func (h *InsightHandler) generate(c *fiber.Ctx) error {
	if err := h.engine.Run(c.Context(), h.now()); err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "weekly insights generated", nil)
}

func (h *InsightHandler) listForStudent(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var courseID *uint
	if raw := c.Query("courseId"); raw != "" {
		parsed, err := parseUintValue(raw)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid course identifier")
		}
		courseID = &parsed
	}

	insights, err := h.service.GetInsightsForStudent(c.Context(), studentID, courseID)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "insights retrieved", insights)
}

func (h *InsightHandler) addSuggestion(c *fiber.Ctx) error {
	insightID, err := parseUintParam(c, "insightId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SuggestionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	suggestion, err := h.service.AddSuggestion(c.Context(), insightID, payload, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "suggestion added", suggestion)
}

func (h *InsightHandler) approveSuggestion(c *fiber.Ctx) error {
	insightID, err := parseUintParam(c, "insightId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	suggestionID, err := parseUintParam(c, "suggId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	suggestion, err := h.service.ApproveSuggestion(c.Context(), insightID, suggestionID, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "suggestion approved", suggestion)
}

func (h *InsightHandler) listSuggestions(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	suggestions, err := h.service.GetSuggestionsForStudent(c.Context(), studentID, actorFromContext(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "suggestions retrieved", suggestions)
}

func (h *InsightHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrInsightNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "insight not found")
	case errors.Is(err, service.ErrSuggestionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "suggestion not found")
	case errors.Is(err, service.ErrNotAuthorized):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case errors.Is(err, service.ErrInvalidSuggestion):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *InsightHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
