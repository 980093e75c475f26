package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/shehrozeikram/SGCEducation-sub002/api/swagger"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/middleware"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/config"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/logger"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/metrics"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/middleware/cors"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/middleware/requestid"
)

// NewMonitorRouter builds the read-only server of `sgcctl monitor --serve`.
func NewMonitorRouter(cfg *config.Config, logr *zap.Logger, rec *metrics.Recorder, monitor performanceSource) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	h := NewMonitorHandler(monitor, rec)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestid.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(cors.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(rec))

	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)
	r.GET("/stats", h.Stats)
	r.GET("/performance", h.Performance)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	return r
}
