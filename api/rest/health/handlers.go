package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	serviceName = "todoai"
	version     = "1.0.0"
)

// Handler godoc
// @Summary Health check
// @Description Reports service status, the state backend and the model in use
// @Tags health
// @Produce json
// @Success 200 {object} Response
// @Router /health [get]
func Handler(backend, model string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, Response{
			Status:  "healthy",
			Service: serviceName,
			Version: version,
			Backend: backend,
			Model:   model,
		})
	}
}

// PingHandler godoc
// @Summary Ping
// @Tags health
// @Produce json
// @Success 200 {object} PingResponse
// @Router /api/v1/ping [get]
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}
