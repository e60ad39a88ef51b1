package delivery

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type RouteRegistrar interface {
	RegisterRoutes(router gin.IRouter)
}

// NewRouter builds the gin engine with recovery, request logging and every
// handler's routes.
func NewRouter(logger *logrus.Logger, maxUploadBytes int64, handlers ...RouteRegistrar) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = maxUploadBytes
	router.Use(gin.Recovery())
	router.Use(RequestLogger(logger))

	for _, h := range handlers {
		h.RegisterRoutes(router)
	}
	return router
}
