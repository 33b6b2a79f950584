package routes

import (
	"net/http"

	"github.com/inkwell-labs/cartograph/pkg/ai"
	"github.com/inkwell-labs/cartograph/pkg/common"
	"github.com/inkwell-labs/cartograph/pkg/graph"
	"github.com/inkwell-labs/cartograph/pkg/logger"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	segmentEncoder       = "o200k_base"
	defaultSegmentTokens = 300
)

// Handler carries the extraction pipeline shared by all routes. The model
// client is kept alongside it only for per-request metrics reporting.
type Handler struct {
	pipeline *graph.Pipeline
	client   ai.GraphAIClient
}

func NewHandler(pipeline *graph.Pipeline, client ai.GraphAIClient) *Handler {
	return &Handler{pipeline: pipeline, client: client}
}

// ExtractHandler runs the text-to-graph extraction for one document. The
// caller sends either pre-segmented text or raw text that the server segments
// on sentence boundaries under a token budget.
func (h *Handler) ExtractHandler(c echo.Context) error {
	type extractBody struct {
		DocID     string   `json:"doc_id"`
		Segments  []string `json:"segments"`
		Text      string   `json:"text"`
		MaxTokens int      `json:"max_tokens" validate:"omitempty,min=1"`
	}

	type extractResponse struct {
		Message       string                   `json:"message,omitempty"`
		DocID         string                   `json:"doc_id,omitempty"`
		Entities      []common.CanonicalEntity `json:"entities"`
		Relationships []common.Relationship    `json:"relationships"`
		Metrics       *ai.ModelMetrics         `json:"metrics,omitempty"`
	}

	data := new(extractBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, extractResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, extractResponse{
			Message: "Invalid request body",
		})
	}
	if len(data.Segments) > 0 && data.Text != "" {
		return c.JSON(http.StatusBadRequest, extractResponse{
			Message: "Provide either segments or text, not both",
		})
	}
	if len(data.Segments) == 0 && data.Text == "" {
		return c.JSON(http.StatusBadRequest, extractResponse{
			Message: "Provide segments or text to extract from",
		})
	}

	docID := data.DocID
	if docID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, extractResponse{
				Message: "Failed to generate document ID",
			})
		}
		docID = id
	}

	var segments []common.TextSegment
	if len(data.Segments) > 0 {
		segments = make([]common.TextSegment, 0, len(data.Segments))
		for i, text := range data.Segments {
			segments = append(segments, common.TextSegment{Index: i, Text: text})
		}
	} else {
		maxTokens := data.MaxTokens
		if maxTokens == 0 {
			maxTokens = defaultSegmentTokens
		}
		var err error
		segments, err = graph.SegmentText(data.Text, segmentEncoder, maxTokens)
		if err != nil {
			logger.Error("Failed to segment text", "doc", docID, "err", err)
			return c.JSON(http.StatusInternalServerError, extractResponse{
				Message: "Failed to segment text",
			})
		}
	}

	if h.client != nil {
		h.client.ResetMetrics()
	}

	result, err := h.pipeline.Extract(c.Request().Context(), docID, segments)
	if err != nil {
		logger.Error("Extraction failed", "doc", docID, "err", err)
		return c.JSON(http.StatusInternalServerError, extractResponse{
			Message: "Extraction failed",
		})
	}

	response := extractResponse{
		DocID:         docID,
		Entities:      result.Entities,
		Relationships: result.Relationships,
	}
	if h.client != nil {
		metrics := h.client.GetMetrics()
		response.Metrics = &metrics
	}

	return c.JSON(http.StatusOK, response)
}
