// Package response writes the JSON bodies the API contract promises:
// payloads are returned as-is with their status code, failures are a
// {"detail": "..."} object.
package response

import "github.com/gin-gonic/gin"

func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

func Detail(c *gin.Context, status int, detail string) {
	c.JSON(status, gin.H{"detail": detail})
}

func AbortDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}
