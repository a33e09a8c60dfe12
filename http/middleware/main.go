package middlewares

import (
	"github.com/eduforge/edu-file-gateway/http/controller"
	"github.com/gin-gonic/gin"
)

type Middlewares struct {
	CORSMiddleware         gin.HandlerFunc
	AuthMiddleware         gin.HandlerFunc
	OptionalAuthMiddleware gin.HandlerFunc
}

func NewMiddlewares(ctrl *controller.Controller) (*Middlewares, error) {
	cfg := ctrl.Config.EnvConfig

	return &Middlewares{
		CORSMiddleware:         CORSMiddleware(cfg),
		AuthMiddleware:         AuthMiddleware(cfg),
		OptionalAuthMiddleware: OptionalAuthMiddleware(cfg),
	}, nil
}
