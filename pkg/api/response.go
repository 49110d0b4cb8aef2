package api

import "github.com/gin-gonic/gin"

// errorBody is the uniform payload for non-2xx responses.
func errorBody(message string) gin.H {
	return gin.H{"error": message}
}
