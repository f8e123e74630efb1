// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/api/handlers"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/api/middleware"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/service"
)

type Services struct {
	ScenarioService *service.ScenarioService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.SessionHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil && services.ScenarioService != nil {
		h := handlers.NewScenarioHandler(services.ScenarioService)

		scenarioGroup := apiGroup.Group("/scenario")
		{
			scenarioGroup.GET("/options", h.GetOptions)
			scenarioGroup.GET("/state", h.GetState)
			scenarioGroup.POST("/run", h.RunScenario)
			scenarioGroup.GET("/projection", h.GetProjection)
			scenarioGroup.POST("/speak", h.Speak)
			scenarioGroup.GET("/history", h.GetHistory)
		}

		apiGroup.POST("/scenarios", h.SaveScenario)
		apiGroup.GET("/scenarios", h.ListScenarios)

		comparisonGroup := apiGroup.Group("/comparison")
		{
			comparisonGroup.GET("", h.GetComparison)
			comparisonGroup.PUT("/:slot", h.SelectComparison)
			comparisonGroup.POST("/export", h.ExportComparison)
			comparisonGroup.GET("/exports", h.ListExports)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
