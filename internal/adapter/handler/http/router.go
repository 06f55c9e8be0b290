package http

import (
	"strings"

	"patient-record-service/internal/config"
	"patient-record-service/internal/core/ports"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Router struct {
	*gin.Engine
}

func NewRouter(
	config *config.HTTP,
	tokenService ports.TokenService,
	patientHandler *PatientHandler,
) (*Router, error) {
	if config.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	// CORS
	ginConfig := cors.DefaultConfig()
	allowedOrigins := config.AllowedOrigins
	originsList := strings.Split(allowedOrigins, ",")
	ginConfig.AllowOrigins = originsList

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), cors.New(ginConfig))

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Liveness
	router.GET("/health", patientHandler.Health)

	// AuthMiddleware(tokenService) is constructed but applied nowhere:
	// no login flow is wired up yet.
	_ = AuthMiddleware(tokenService)

	api := router.Group("/api")
	{
		patients := api.Group("/patients")
		{
			patients.GET("", patientHandler.ListPatients)
			patients.POST("", patientHandler.CreatePatient)
			patients.GET("/search", patientHandler.SearchPatients)
			patients.GET("/age-range", patientHandler.PatientsByAgeRange)
			patients.GET("/stats", patientHandler.GetStats)
			patients.GET("/export", patientHandler.ExportPatients)
			patients.POST("/bulk", patientHandler.BulkCreatePatients)
			patients.GET("/health", patientHandler.Health)
			patients.GET("/:id", patientHandler.GetPatient)
			patients.PUT("/:id", patientHandler.ReplacePatient)
			patients.PATCH("/:id", patientHandler.UpdatePatient)
			patients.DELETE("/:id", patientHandler.DeletePatient)
		}
	}

	return &Router{
		Engine: router,
	}, nil
}

// Starts the HTTP server
func (r *Router) Serve(listenAddr string) error {
	return r.Run(listenAddr)
}
