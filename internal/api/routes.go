package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"quickflip/server/internal/metrics"
)

// NewRouter builds the gin engine with middleware and every route registered.
func NewRouter(handler *Handler, m *metrics.Metrics, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID(logger))
	router.Use(RequestLogger())
	router.Use(CORS())
	router.Use(m.Middleware())

	SetupRoutes(router, handler)
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}
	return router
}

func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/", handler.Root)
	router.GET("/health", handler.Health)
	router.GET("/test", handler.TestDatabase)

	router.POST("/buyers", handler.RegisterBuyer)
	router.POST("/properties", handler.SubmitProperty)

	deals := router.Group("/deals")
	{
		deals.GET("", handler.ListDeals)
		deals.GET("/:id", handler.GetDeal)
		deals.POST("/:id/review", handler.ReviewDeal)
		deals.POST("/:id/close", handler.CloseDeal)
	}
}
