package handlers

import (
	"github.com/gin-gonic/gin"
)

// Success writes the uniform response envelope.
func Success(c *gin.Context, status int, data gin.H) {
	c.JSON(status, gin.H{
		"status": "success",
		"data":   data,
	})
}

// SuccessList is Success plus the result count for list endpoints.
func SuccessList(c *gin.Context, status int, results int, data gin.H) {
	c.JSON(status, gin.H{
		"status":  "success",
		"results": results,
		"data":    data,
	})
}

// requestBaseURL reconstructs the external base URL for links sent to
// clients (checkout redirects, reset emails).
func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
