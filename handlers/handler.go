// Package handlers implements the HTTP API: signup, login, the current user
// and the todo CRUD endpoints.
package handlers

import (
	"time"

	"github.com/biosecret/go-todo/database"
	"github.com/biosecret/go-todo/events"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TokenIssuer signs bearer tokens for a user ID.
type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
}

// Handler carries the dependencies shared by every endpoint.
type Handler struct {
	store    database.Store
	tokens   TokenIssuer
	broker   *events.Broker
	notifier events.Notifier
	log      *zap.Logger
	now      func() time.Time
}

// truncatedNow drops precision below what every store keeps, so a record
// reads back with the timestamps it was returned with.
func truncatedNow() time.Time {
	return time.Now().Truncate(time.Millisecond)
}

// New wires a Handler. broker feeds the SSE endpoint; notifier receives every
// mutation and should include broker.
func New(store database.Store, tokens TokenIssuer, broker *events.Broker, notifier events.Notifier, log *zap.Logger) *Handler {
	if notifier == nil {
		notifier = events.Nop{}
	}
	return &Handler{
		store:    store,
		tokens:   tokens,
		broker:   broker,
		notifier: notifier,
		log:      log,
		now:      truncatedNow,
	}
}

// HandleHealthCheck reports whether the store is reachable.
//
// @Summary  Health check
// @Tags     health
// @Produce  json
// @Success  200 {object} map[string]string
// @Failure  503 {object} map[string]string
// @Router   /health [get]
func (h *Handler) HandleHealthCheck(c *fiber.Ctx) error {
	if err := h.store.Ping(c.UserContext()); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
