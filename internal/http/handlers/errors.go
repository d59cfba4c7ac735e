package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tourbook/internal/domain"
	"tourbook/internal/http/middleware"
	"tourbook/internal/utils"
)

// verbose controls the error profile: development echoes underlying error
// detail, production returns only operational messages.
var verbose = true

func SetVerbose(v bool) { verbose = v }

const errorPage = `<!DOCTYPE html>
<html><head><title>Something went wrong!</title></head>
<body><h1>%d</h1><p>%s</p></body></html>`

// Error is the single funnel for all failures reaching the boundary.
func Error(c *gin.Context, err error) {
	status, message := classify(err)

	if !domain.IsOperational(err) {
		utils.LogEvent(middleware.GetRequestID(c), "http", "unexpected_error", err.Error())
	}

	// webhook callers are machines; they get JSON even though the path sits
	// outside /api
	path := c.Request.URL.Path
	if !strings.HasPrefix(path, "/api") && !strings.HasPrefix(path, "/webhook") {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(status, fmt.Sprintf(errorPage, status, message))
		c.Abort()
		return
	}

	payload := gin.H{
		"status":  statusWord(status),
		"message": message,
	}
	if verbose {
		payload["error"] = err.Error()
		payload["request_id"] = middleware.GetRequestID(c)
	}
	c.AbortWithStatusJSON(status, payload)
}

// classify maps the error taxonomy to a status code and client message. In
// the terse profile unexpected errors collapse to a generic 500.
func classify(err error) (int, string) {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest, err.Error()
	case domain.IsConflict(err):
		// duplicate unique constraint reads as bad input to the client
		return http.StatusBadRequest, err.Error()
	case domain.IsNotFound(err):
		return http.StatusNotFound, err.Error()
	case domain.IsUnauthorized(err):
		return http.StatusUnauthorized, err.Error()
	case domain.IsForbidden(err):
		return http.StatusForbidden, err.Error()
	case domain.IsUpstream(err):
		return http.StatusBadGateway, err.Error()
	default:
		if verbose {
			return http.StatusInternalServerError, err.Error()
		}
		return http.StatusInternalServerError, "something went wrong"
	}
}

func statusWord(status int) string {
	if status >= http.StatusInternalServerError {
		return "error"
	}
	return "fail"
}
