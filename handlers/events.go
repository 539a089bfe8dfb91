package handlers

import (
	"bufio"
	"fmt"
	"time"

	"github.com/biosecret/go-todo/events"
	"github.com/biosecret/go-todo/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const keepAliveInterval = 15 * time.Second

// HandleTodoEvents streams the caller's todo changes as server-sent events
// until the client goes away or the server shuts down.
//
// @Summary   Todo change stream
// @Tags      todos
// @Produce   text/event-stream
// @Security  BearerAuth
// @Success   200 {string} string "event stream"
// @Failure   401 {object} errorResponse
// @Router    /api/todos/events [get]
func (h *Handler) HandleTodoEvents(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set(fiber.HeaderTransferEncoding, "chunked")

	sub := h.broker.Subscribe(user.ID)
	notify := c.Context().Done()
	log := h.log.With(zap.String("user_id", user.ID))
	log.Debug("event stream opened")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		keepAliveTicker := time.NewTicker(keepAliveInterval)
		defer func() {
			keepAliveTicker.Stop()
			h.broker.Unsubscribe(sub)
			log.Debug("event stream closed")
		}()

		fmt.Fprint(w, ": connected\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case <-notify:
				return
			case ev := <-sub.C:
				msg, err := events.FormatSSE(string(ev.Type), ev)
				if err != nil {
					log.Error("error formatting sse message", zap.Error(err))
					continue
				}
				fmt.Fprint(w, msg)
				if err := w.Flush(); err != nil {
					return
				}
			case <-keepAliveTicker.C:
				fmt.Fprint(w, ":keepalive\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))

	return nil
}
