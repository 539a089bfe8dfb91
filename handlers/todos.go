package handlers

import (
	"errors"

	"github.com/biosecret/go-todo/database"
	"github.com/biosecret/go-todo/events"
	"github.com/biosecret/go-todo/middleware"
	"github.com/biosecret/go-todo/models"
	"github.com/biosecret/go-todo/schema"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type createTodoRequest struct {
	Title       string `json:"title" example:"Buy milk"`
	Description string `json:"description" example:"2 litres"`
}

// HandleAllTodos lists the caller's todos in store order.
//
// @Summary   List todos
// @Tags      todos
// @Produce   json
// @Security  BearerAuth
// @Success   200 {array}  models.Todo
// @Failure   401 {object} errorResponse
// @Failure   500 {object} errorResponse
// @Router    /api/todos [get]
func (h *Handler) HandleAllTodos(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	todos, err := h.store.ListTodos(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(todos)
}

// HandleCreateTodo adds a pending todo for the caller.
//
// @Summary   Create todo
// @Tags      todos
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body body createTodoRequest true "Todo"
// @Success   201 {object} models.Todo
// @Failure   400 {object} errorResponse
// @Failure   401 {object} errorResponse
// @Failure   500 {object} errorResponse
// @Router    /api/todos [post]
func (h *Handler) HandleCreateTodo(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	if err := schema.Validate(schema.TodoCreate, c.Body()); err != nil {
		return badRequest(err.Error())
	}
	nTodo := new(createTodoRequest)
	if len(c.Body()) > 0 {
		if err := c.BodyParser(nTodo); err != nil {
			return badRequest(err.Error())
		}
	}

	todo, err := models.NewTodo(user.ID, nTodo.Title, nTodo.Description, h.now())
	if errors.Is(err, models.ErrEmptyTitle) {
		return badRequest("Please add a title")
	}
	if err != nil {
		return err
	}

	if err := h.store.CreateTodo(c.UserContext(), todo); err != nil {
		return err
	}
	h.notifier.Publish(events.Event{Type: events.Created, UserID: user.ID, Todo: *todo})

	return c.Status(fiber.StatusCreated).JSON(todo)
}

// HandleUpdateTodo applies a partial update to one of the caller's todos.
//
// @Summary   Update todo
// @Tags      todos
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id   path string           true "Todo ID"
// @Param     body body models.TodoPatch true "Fields to change"
// @Success   200 {object} models.Todo
// @Failure   400 {object} errorResponse
// @Failure   401 {object} errorResponse
// @Failure   404 {object} errorResponse
// @Failure   500 {object} errorResponse
// @Router    /api/todos/{id} [put]
func (h *Handler) HandleUpdateTodo(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	id := c.Params("id")

	if err := schema.Validate(schema.TodoUpdate, c.Body()); err != nil {
		return badRequest(err.Error())
	}
	patch := new(models.TodoPatch)
	if len(c.Body()) > 0 {
		if err := c.BodyParser(patch); err != nil {
			return badRequest(err.Error())
		}
	}

	todo, err := h.ownedTodo(c, id, user.ID, "Not authorized to update this todo")
	if err != nil {
		return err
	}

	if err := todo.Apply(*patch, h.now()); err != nil {
		return badRequest("Please add a title")
	}
	if err := h.store.UpdateTodo(c.UserContext(), user.ID, todo); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return notFound("Todo not found")
		}
		return err
	}
	h.notifier.Publish(events.Event{Type: events.Updated, UserID: user.ID, Todo: *todo})

	return c.Status(fiber.StatusOK).JSON(todo)
}

// HandleDeleteTodo hard-deletes one of the caller's todos.
//
// @Summary   Delete todo
// @Tags      todos
// @Produce   json
// @Security  BearerAuth
// @Param     id path string true "Todo ID"
// @Success   200 {object} messageResponse
// @Failure   401 {object} errorResponse
// @Failure   404 {object} errorResponse
// @Failure   500 {object} errorResponse
// @Router    /api/todos/{id} [delete]
func (h *Handler) HandleDeleteTodo(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	id := c.Params("id")

	todo, err := h.ownedTodo(c, id, user.ID, "Not authorized to delete this todo")
	if err != nil {
		return err
	}

	if err := h.store.DeleteTodo(c.UserContext(), user.ID, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return notFound("Todo not found")
		}
		return err
	}
	h.notifier.Publish(events.Event{Type: events.Deleted, UserID: user.ID, Todo: *todo})
	h.log.Debug("todo deleted", zap.String("todo_id", id), zap.String("user_id", user.ID))

	return c.Status(fiber.StatusOK).JSON(messageResponse{Message: "Todo removed"})
}

// ownedTodo loads id and checks it belongs to userID. A missing todo is a 404
// and someone else's is a 401 with denied as the message.
func (h *Handler) ownedTodo(c *fiber.Ctx, id, userID, denied string) (*models.Todo, error) {
	todo, err := h.store.GetTodo(c.UserContext(), id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFound("Todo not found")
	}
	if err != nil {
		return nil, err
	}
	if !todo.OwnedBy(userID) {
		return nil, unauthorized(denied)
	}
	return todo, nil
}
