// Package client talks to the go-todo HTTP API and keeps the local session
// and settings the CLI needs between runs.
package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/biosecret/go-todo/models"
	"github.com/valyala/fasthttp"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// AuthResult is what signup and login return.
type AuthResult struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}

// Client is a typed wrapper over the REST API. Requests carry the bearer
// token set with SetToken.
type Client struct {
	baseURL string
	token   string
	http    *fasthttp.Client
}

// New returns a client for the API rooted at baseURL. A nil httpClient gets a
// default fasthttp.Client.
func New(baseURL string, httpClient *fasthttp.Client) *Client {
	if httpClient == nil {
		httpClient = &fasthttp.Client{Name: "gotodo-cli"}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Token() string {
	return c.token
}

func (c *Client) Signup(email, password, name string) (*AuthResult, error) {
	var res AuthResult
	err := c.do(fasthttp.MethodPost, "/api/auth/signup", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Login(email, password string) (*AuthResult, error) {
	var res AuthResult
	err := c.do(fasthttp.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Me() (*models.PublicUser, error) {
	var res struct {
		User models.PublicUser `json:"user"`
	}
	if err := c.do(fasthttp.MethodGet, "/api/auth/me", nil, &res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

func (c *Client) ListTodos() ([]models.Todo, error) {
	var todos []models.Todo
	if err := c.do(fasthttp.MethodGet, "/api/todos", nil, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

func (c *Client) CreateTodo(title, description string) (*models.Todo, error) {
	var todo models.Todo
	err := c.do(fasthttp.MethodPost, "/api/todos", map[string]string{
		"title":       title,
		"description": description,
	}, &todo)
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// UpdateTodo sends only the fields set in patch.
func (c *Client) UpdateTodo(id string, patch models.TodoPatch) (*models.Todo, error) {
	var todo models.Todo
	if err := c.do(fasthttp.MethodPut, "/api/todos/"+id, patch, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (c *Client) DeleteTodo(id string) error {
	return c.do(fasthttp.MethodDelete, "/api/todos/"+id, nil, nil)
}

func (c *Client) do(method, path string, in, out any) error {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if c.token != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+c.token)
	}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(body)
	}

	if err := c.http.Do(req, resp); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return decodeAPIError(status, resp.Body())
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)

	msg := payload.Error
	if msg == "" {
		msg = payload.Message
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg}
}
