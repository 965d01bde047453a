package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eduflex-api/internal/dto"
	"github.com/noah-isme/eduflex-api/internal/middleware"
	"github.com/noah-isme/eduflex-api/internal/models"
	"github.com/noah-isme/eduflex-api/internal/service"
	"github.com/noah-isme/eduflex-api/internal/utils"
)

// NotificationHandler wires the per-user notification inbox routes.
type NotificationHandler struct {
	service service.NotificationService
	logger  zerolog.Logger
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(notificationService service.NotificationService, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: notificationService,
		logger:  logger.With().Str("component", "notification_handler").Logger(),
	}
}

// Register attaches the inbox endpoints to the router group. Every route acts
// on the authenticated caller's own notifications.
func (h *NotificationHandler) Register(router fiber.Router) {
	anyRole := middleware.RequireRole(models.RoleStudent, models.RoleProfessor, models.RoleAdmin)

	router.Get("/", anyRole, h.list)
	router.Patch("/:notifId/read", anyRole, h.markRead)
	router.Post("/read-all", anyRole, h.markAllRead)
}

func (h *NotificationHandler) list(c *fiber.Ctx) error {
	actor := actorFromContext(c)
	if actor.ID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "missing user identity")
	}

	limit := parseQueryInt(c, "limit", 50)
	offset := parseQueryInt(c, "offset", 0)

	notifications, err := h.service.ListForUser(c.Context(), actor.ID, limit, offset)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "notifications retrieved", notifications)
}

func (h *NotificationHandler) markRead(c *fiber.Ctx) error {
	actor := actorFromContext(c)
	if actor.ID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "missing user identity")
	}

	notificationID, err := parseUintParam(c, "notifId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	notification, err := h.service.MarkRead(c.Context(), notificationID, actor.ID)
	if err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "notification not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "notification marked read", notification)
}

func (h *NotificationHandler) markAllRead(c *fiber.Ctx) error {
	actor := actorFromContext(c)
	if actor.ID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "missing user identity")
	}

	updated, err := h.service.MarkAllRead(c.Context(), actor.ID)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "notifications marked read", dto.NotificationsMarkedResponse{Updated: updated})
}

func (h *NotificationHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}

func parseQueryInt(c *fiber.Ctx, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
