package handlers

import (
	"errors"

	"github.com/biosecret/go-todo/database"
	"github.com/biosecret/go-todo/middleware"
	"github.com/biosecret/go-todo/models"
	"github.com/biosecret/go-todo/schema"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Same message for unknown email and wrong password.
const invalidCredentials = "Invalid login credentials"

type signupRequest struct {
	Email    string `json:"email" example:"a@x.com"`
	Password string `json:"password" example:"pw1"`
	Name     string `json:"name" example:"A"`
}

type loginRequest struct {
	Email    string `json:"email" example:"a@x.com"`
	Password string `json:"password" example:"pw1"`
}

type authResponse struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}

type meResponse struct {
	User models.PublicUser `json:"user"`
}

// SignupHandler registers a new account and logs it in.
//
// @Summary  Sign up
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body signupRequest true "New account"
// @Success  201 {object} authResponse
// @Failure  400 {object} errorResponse
// @Router   /api/auth/signup [post]
func (h *Handler) SignupHandler(c *fiber.Ctx) error {
	if err := schema.Validate(schema.Signup, c.Body()); err != nil {
		return badRequest(err.Error())
	}
	req := new(signupRequest)
	if err := c.BodyParser(req); err != nil {
		return badRequest(err.Error())
	}

	ctx := c.UserContext()
	email := models.NormalizeEmail(req.Email)
	h.log.Info("signup attempt", zap.String("email", email))

	_, err := h.store.GetUserByEmail(ctx, email)
	if err == nil {
		return badRequest("Email already registered")
	}
	if !errors.Is(err, database.ErrNotFound) {
		return err
	}

	hashed, err := models.HashPassword(req.Password)
	if err != nil {
		return err
	}
	user := &models.User{
		Email:     email,
		Password:  hashed,
		Name:      req.Name,
		CreatedAt: h.now(),
	}
	if err := h.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return badRequest("Email already registered")
		}
		return err
	}

	token, _, err := h.tokens.Issue(user.ID)
	if err != nil {
		return err
	}
	h.log.Info("user created", zap.String("user_id", user.ID))

	return c.Status(fiber.StatusCreated).JSON(authResponse{User: user.Public(), Token: token})
}

// LoginHandler exchanges email and password for a token.
//
// @Summary  Log in
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body loginRequest true "Credentials"
// @Success  200 {object} authResponse
// @Failure  400 {object} errorResponse
// @Failure  401 {object} errorResponse
// @Router   /api/auth/login [post]
func (h *Handler) LoginHandler(c *fiber.Ctx) error {
	if err := schema.Validate(schema.Login, c.Body()); err != nil {
		return badRequest(err.Error())
	}
	input := new(loginRequest)
	if err := c.BodyParser(input); err != nil {
		return badRequest(err.Error())
	}

	email := models.NormalizeEmail(input.Email)
	user, err := h.store.GetUserByEmail(c.UserContext(), email)
	if errors.Is(err, database.ErrNotFound) {
		h.log.Info("login failed", zap.String("email", email))
		return unauthorized(invalidCredentials)
	}
	if err != nil {
		return err
	}

	if !user.MatchPassword(input.Password) {
		h.log.Info("login failed", zap.String("email", email))
		return unauthorized(invalidCredentials)
	}

	token, _, err := h.tokens.Issue(user.ID)
	if err != nil {
		return err
	}
	h.log.Info("login successful", zap.String("user_id", user.ID))

	return c.JSON(authResponse{User: user.Public(), Token: token})
}

// MeHandler returns the authenticated user.
//
// @Summary   Current user
// @Tags      auth
// @Produce   json
// @Security  BearerAuth
// @Success   200 {object} meResponse
// @Failure   401 {object} errorResponse
// @Router    /api/auth/me [get]
func (h *Handler) MeHandler(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	return c.JSON(meResponse{User: user.Public()})
}
