// Package http provides the app greeting endpoint
package http

import (
	"net/http"

	"modhost/internal/modkit/httpkit"
)

// Greeting is what GET / answers with
const Greeting = "Hello World!"

// Controller serves the app root
type Controller struct {
	greeting string
}

// NewController returns a controller answering with Greeting
func NewController() *Controller { return &Controller{greeting: Greeting} }

// MountRoutes implements module.Controller
func (c *Controller) MountRoutes(r httpkit.Router) {
	httpkit.Get(r, "/", c.hello)
}

// @Summary Greeting
// @Tags App
// @Produce json
// @Success 200 {string} string "Hello World!"
// @Router / [get]
func (c *Controller) hello(_ *http.Request) (any, error) {
	return c.greeting, nil
}
