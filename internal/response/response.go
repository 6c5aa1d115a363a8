// Package response renders the JSON envelope shared by every API endpoint
// and the typed errors controllers return.
package response

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Meta    any    `json:"meta,omitempty"`
}

// OK writes a 200 envelope carrying data.
func OK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 envelope carrying the created entity.
func Created(c echo.Context, msg string, data any) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Message: msg, Data: data})
}

// Message writes a 200 envelope with only a message, or a message and data.
func Message(c echo.Context, msg string, data any) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: msg, Data: data})
}

// WithMeta writes a 200 envelope with data and meta.
func WithMeta(c echo.Context, data, meta any) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Meta: meta})
}

// IsAPI reports whether path addresses the JSON API.
func IsAPI(path string) bool {
	return strings.HasPrefix(strings.TrimPrefix(path, "/"), "api/")
}
