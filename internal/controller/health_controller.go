package controller

import (
	"net/http"

	"github.com/addrgate/addrgate/internal/api"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	router *gin.RouterGroup
}

func NewHealthController(router *gin.RouterGroup) *HealthController {
	return &HealthController{
		router: router,
	}
}

func (controller *HealthController) SetupRoutes() {
	controller.router.GET("/healthcheck", controller.healthcheckHandler)
	controller.router.HEAD("/healthcheck", controller.healthcheckHandler)
}

func (controller *HealthController) healthcheckHandler(c *gin.Context) {
	api.Data(c, http.StatusOK, gin.H{
		"status": "healthy",
	})
}
