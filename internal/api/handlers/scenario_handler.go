package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/api/middleware"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/domain"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/engine"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/report"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/service"
)

const backendUnavailableMessage = "The simulation service is unavailable. Please try again."

type ScenarioHandler struct {
	service *service.ScenarioService
}

func NewScenarioHandler(service *service.ScenarioService) *ScenarioHandler {
	return &ScenarioHandler{service: service}
}

func sessionID(c *gin.Context) string {
	return c.GetHeader(middleware.SessionHeader)
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}

// GetOptions lists the selectable target service levels.
func (h *ScenarioHandler) GetOptions(c *gin.Context) {
	levels := make([]gin.H, 0, len(domain.ServiceLevels))
	for _, level := range domain.ServiceLevels {
		levels = append(levels, gin.H{
			"value": level,
			"label": fmt.Sprintf("%.0f%%", float64(level)*100),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"service_levels": levels,
		"default":        domain.DefaultServiceLevel,
	})
}

func (h *ScenarioHandler) GetState(c *gin.Context) {
	st := h.service.State(sessionID(c))
	c.JSON(http.StatusOK, gin.H{
		"running": st.Running(),
		"current": st.Current,
		"notice":  st.Notice,
	})
}

func (h *ScenarioHandler) RunScenario(c *gin.Context) {
	var input domain.ScenarioInput
	if err := c.ShouldBindJSON(&input); err != nil {
		errorResponse(c, http.StatusBadRequest, fmt.Sprintf("invalid scenario input: %v", err))
		return
	}

	result, err := h.service.Run(c.Request.Context(), sessionID(c), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			errorResponse(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrBackendUnavailable):
			errorResponse(c, http.StatusBadGateway, backendUnavailableMessage)
		default:
			log.Error().Err(err).Msg("run scenario failed")
			errorResponse(c, http.StatusInternalServerError, "failed to run scenario")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result":  result,
		"summary": engine.BuildSpokenSummary(result),
	})
}

// GetProjection returns the inventory curve for ?demand= or the last run.
// With ?format=pdf the curve is rendered as a chart instead.
func (h *ScenarioHandler) GetProjection(c *gin.Context) {
	var demand *float64
	if raw := strings.TrimSpace(c.Query("demand")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			errorResponse(c, http.StatusBadRequest, "demand must be a non-negative number")
			return
		}
		demand = &v
	}

	if strings.EqualFold(c.Query("format"), string(report.FormatPDF)) {
		var buf bytes.Buffer
		contentType, err := h.service.RenderProjection(&buf, sessionID(c), demand)
		if err != nil {
			if errors.Is(err, service.ErrChartRendererMissing) {
				errorResponse(c, http.StatusNotImplemented, err.Error())
				return
			}
			log.Error().Err(err).Msg("render projection failed")
			errorResponse(c, http.StatusInternalServerError, "failed to render projection")
			return
		}
		c.Data(http.StatusOK, contentType, buf.Bytes())
		return
	}

	c.JSON(http.StatusOK, gin.H{"points": h.service.Projection(sessionID(c), demand)})
}

func (h *ScenarioHandler) Speak(c *gin.Context) {
	text := h.service.Speak(c.Request.Context(), sessionID(c))
	c.JSON(http.StatusOK, gin.H{"text": text})
}

func (h *ScenarioHandler) GetHistory(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			errorResponse(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = v
	}

	runs, err := h.service.History(c.Request.Context(), sessionID(c), limit)
	if err != nil {
		log.Error().Err(err).Msg("list run history failed")
		errorResponse(c, http.StatusInternalServerError, "failed to load run history")
		return
	}
	if runs == nil {
		runs = []domain.RunRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

type saveScenarioRequest struct {
	Name string `json:"name"`
}

func (h *ScenarioHandler) SaveScenario(c *gin.Context) {
	var req saveScenarioRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			errorResponse(c, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
			return
		}
	}

	saved, err := h.service.Save(sessionID(c), req.Name)
	if err != nil {
		if errors.Is(err, domain.ErrNoResult) {
			c.JSON(http.StatusConflict, gin.H{
				"error":  err.Error(),
				"notice": h.service.State(sessionID(c)).Notice,
			})
			return
		}
		log.Error().Err(err).Msg("save scenario failed")
		errorResponse(c, http.StatusInternalServerError, "failed to save scenario")
		return
	}

	c.JSON(http.StatusCreated, saved)
}

func (h *ScenarioHandler) ListScenarios(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"scenarios": h.service.ListScenarios(sessionID(c))})
}

func (h *ScenarioHandler) GetComparison(c *gin.Context) {
	st := h.service.State(sessionID(c))
	c.JSON(http.StatusOK, gin.H{
		"selection":  st.Selection,
		"comparison": engine.BuildComparison(st),
	})
}

type selectComparisonRequest struct {
	ID string `json:"id"`
}

// SelectComparison points slot a or b at a saved scenario id. The id is not
// checked; unknown ids fall back at read time.
func (h *ScenarioHandler) SelectComparison(c *gin.Context) {
	slot, ok := domain.ParseComparisonSlot(c.Param("slot"))
	if !ok {
		errorResponse(c, http.StatusBadRequest, "slot must be a or b")
		return
	}

	var req selectComparisonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	selection := h.service.Select(sessionID(c), slot, req.ID)
	c.JSON(http.StatusOK, gin.H{
		"selection":  selection,
		"comparison": h.service.Comparison(sessionID(c)),
	})
}

type exportRequest struct {
	Format string `json:"format"`
	Target string `json:"target"`
}

func (h *ScenarioHandler) ExportComparison(c *gin.Context) {
	var req exportRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			errorResponse(c, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
			return
		}
	}

	format, err := report.ParseFormat(req.Format)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	target, err := service.ParseExportTarget(req.Target)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.service.Export(c.Request.Context(), sessionID(c), format, target)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrComparisonUnavailable):
			errorResponse(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrExportTargetDisabled):
			errorResponse(c, http.StatusServiceUnavailable, err.Error())
		default:
			log.Error().Err(err).Str("target", string(target)).Msg("export comparison failed")
			errorResponse(c, http.StatusInternalServerError, "failed to export comparison")
		}
		return
	}

	if target == service.TargetDownload {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Name))
		c.Data(http.StatusOK, res.Document.ContentType, res.Document.Data)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *ScenarioHandler) ListExports(c *gin.Context) {
	entries, err := h.service.ListExports(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("list exports failed")
		errorResponse(c, http.StatusInternalServerError, "failed to list exports")
		return
	}
	c.JSON(http.StatusOK, gin.H{"exports": entries})
}
