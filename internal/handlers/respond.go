// Package handlers turns HTTP requests into service calls and service
// results into JSON.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"

	"marketplace-backend/internal/apperr"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation, apperr.KindAlreadySeller:
		return http.StatusBadRequest
	case apperr.KindNotSeller, apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// respondError writes err to the client. Validation errors become
// {"field": ["message"]}; other known kinds {"error": "message"}; anything
// else is logged and hidden behind a 500.
func respondError(c *gin.Context, err error) {
	respondErrorAs(c, err, nil)
}

// respondErrorAs is respondError with per-route status overrides.
func respondErrorAs(c *gin.Context, err error, override map[apperr.Kind]int) {
	e, ok := apperr.As(err)
	if !ok {
		slog.Error("Request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	status := statusFor(e.Kind)
	if s, ok := override[e.Kind]; ok {
		status = s
	}
	if e.Kind == apperr.KindValidation && e.Field != "" {
		c.JSON(status, gin.H{e.Field: []string{e.Message}})
		return
	}
	c.JSON(status, gin.H{"error": e.Message})
}

// bindJSON decodes the request body into dst and runs its binding tags.
// An empty body decodes as {}. Type mismatches and failed tags are
// reported against the offending field.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(dst)
	}
	if err == nil {
		return true
	}
	if body, ok := validationBody(err); ok {
		c.JSON(http.StatusBadRequest, body)
		return false
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		c.JSON(http.StatusBadRequest, gin.H{typeErr.Field: []string{typeMessage(typeErr.Type)}})
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed request body: " + err.Error()})
	return false
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

func typeMessage(t reflect.Type) string {
	if t == decimalType {
		return "A valid number is required."
	}
	return "Incorrect type. Expected " + t.String() + "."
}

// pathID reads a positive integer route param. Anything else cannot name
// a row, so it is a 404.
func pathID(c *gin.Context, name, model string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No " + model + " matches the given query."})
		return 0, false
	}
	return uint(id), true
}

// queryUint parses an optional unsigned query parameter.
func queryUint(c *gin.Context, key string) (*uint, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, apperr.Validation(key, "Select a valid choice. That choice is not one of the available choices.")
	}
	u := uint(v)
	return &u, nil
}

// queryBool parses an optional boolean query parameter the way HTML forms
// send them.
func queryBool(c *gin.Context, key string) (*bool, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	var b bool
	switch raw {
	case "true", "True", "1":
		b = true
	case "false", "False", "0":
		b = false
	default:
		return nil, apperr.Validation(key, "Select a valid choice. That choice is not one of the available choices.")
	}
	return &b, nil
}
