package router

import (
	"github.com/biosecret/go-todo/handlers"
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes mounts the API. protected runs before every route that needs a
// bearer token.
func SetupRoutes(app *fiber.App, h *handlers.Handler, protected fiber.Handler) {
	app.Get("/health", h.HandleHealthCheck)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/signup", h.SignupHandler)
	auth.Post("/login", h.LoginHandler)
	auth.Get("/me", protected, h.MeHandler)

	todos := api.Group("/todos", protected)
	todos.Get("/", h.HandleAllTodos)
	todos.Post("/", h.HandleCreateTodo)
	todos.Get("/events", h.HandleTodoEvents)
	todos.Put("/:id", h.HandleUpdateTodo)
	todos.Delete("/:id", h.HandleDeleteTodo)
}
