package routes

import (
	"github.com/eduforge/edu-file-gateway/http/controller"
	middlewares "github.com/eduforge/edu-file-gateway/http/middleware"
	"github.com/gin-gonic/gin"
)

func SetupRouter(ctrl *controller.Controller) *gin.Engine {
	r := gin.Default()
	middles, err := middlewares.NewMiddlewares(ctrl)
	if err != nil {
		panic(err)
	}

	r.Use(middles.CORSMiddleware)

	r.GET("/healthz", ctrl.Health)

	r.POST("/upload", middles.AuthMiddleware, ctrl.UploadFile)

	files := r.Group("/files", middles.OptionalAuthMiddleware)
	{
		files.GET("/*path", ctrl.RetrieveFile)
		files.HEAD("/*path", ctrl.RetrieveFile)
		files.DELETE("/*path", ctrl.DeleteFile)
	}

	return r
}
