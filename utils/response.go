package utils

import "github.com/gin-gonic/gin"

func JSONSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, data)
}

// JSONError writes {"error": {"code": ..., "message": ...}}.
func JSONError(c *gin.Context, code int, errCode, message string) {
	c.JSON(code, gin.H{"error": gin.H{"code": errCode, "message": message}})
}
