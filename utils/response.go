package utils

import "github.com/gin-gonic/gin"

// JSONError writes {"error": {"code", "message"}}. extra keys are merged
// into the error object.
func JSONError(c *gin.Context, code int, errCode, message string, extra gin.H) {
	body := gin.H{"code": errCode, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	c.AbortWithStatusJSON(code, gin.H{"error": body})
}
