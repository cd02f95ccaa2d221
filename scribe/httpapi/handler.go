// Package httpapi exposes summary generation, extraction and rendering over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thapar25/EMR/scribe"
	"github.com/thapar25/EMR/scribe/render"
	"go.uber.org/zap"
)

// SummaryGenerator is satisfied by *scribe.Summarizer.
type SummaryGenerator interface {
	GenerateSummary(ctx context.Context, dialogue string) (*scribe.SummaryStream, error)
}

// RecordExtractor is satisfied by *scribe.Extractor.
type RecordExtractor interface {
	Extract(ctx context.Context, narrative string) (*scribe.ClinicalRecord, error)
}

type Handler struct {
	summarizer     SummaryGenerator
	extractor      RecordExtractor
	extractTimeout time.Duration
	logger         *zap.Logger
}

// NewHandler wires the handlers. extractTimeout bounds one extraction call; zero leaves it to the
// request context.
func NewHandler(summarizer SummaryGenerator, extractor RecordExtractor, extractTimeout time.Duration, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		summarizer:     summarizer,
		extractor:      extractor,
		extractTimeout: extractTimeout,
		logger:         logger,
	}
}

type SummaryRequest struct {
	Dialogue string        `json:"dialogue"`
	Visit    *scribe.Visit `json:"visit,omitempty"`
}

// SummaryFrame is one line of the summary response.
type SummaryFrame struct {
	Delta string `json:"delta"`
}

type ExtractRequest struct {
	Summary string `json:"summary"`
}

type RenderResponse struct {
	render.Document
	Missing []string `json:"missing"`
}

// Summary streams the narrative as newline-delimited {"delta": ...} frames, flushing each one.
// There is no terminator frame: a failure after the first frame aborts the connection.
func (h *Handler) Summary(c *gin.Context) {
	var req SummaryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	dialogue := req.Dialogue
	if req.Visit != nil {
		dialogue = scribe.ComposeDialogue(*req.Visit, req.Dialogue)
	}

	stream, err := h.summarizer.GenerateSummary(c.Request.Context(), dialogue)
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer stream.Close()

	enc := json.NewEncoder(c.Writer)
	started := false
	for stream.Next() {
		if !started {
			c.Header("Content-Type", "application/x-ndjson")
			c.Status(http.StatusOK)
			started = true
		}
		if err := enc.Encode(SummaryFrame{Delta: stream.Fragment()}); err != nil {
			h.logger.Info("summary client went away",
				zap.String("request_id", c.GetString(requestIDKey)),
				zap.Error(err),
			)
			return
		}
		c.Writer.Flush()
	}

	if err := stream.Err(); err != nil {
		if !started {
			h.writeError(c, err)
			return
		}
		h.logger.Warn("summary stream failed mid-response",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err),
		)
		panic(http.ErrAbortHandler)
	}
	if !started {
		c.Header("Content-Type", "application/x-ndjson")
		c.Status(http.StatusOK)
		c.Writer.WriteHeaderNow()
	}
}

// Extract returns the ClinicalRecord for a narrative summary.
func (h *Handler) Extract(c *gin.Context) {
	var req ExtractRequest
	if !h.bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	if h.extractTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.extractTimeout)
		defer cancel()
	}

	rec, err := h.extractor.Extract(ctx, req.Summary)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Render validates a posted ClinicalRecord and returns its document as JSON (default), HTML or
// plain text, chosen by the format query parameter.
func (h *Handler) Render(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.writeBodyError(c, err)
		return
	}
	rec, err := scribe.DecodeRecord(string(body))
	if err != nil {
		h.writeError(c, err)
		return
	}
	doc, err := render.Render(rec)
	if err != nil {
		h.writeError(c, err)
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "html":
		b, err := render.HTML(doc)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", b)
	case "text":
		c.String(http.StatusOK, render.Text(doc))
	case "json":
		c.JSON(http.StatusOK, RenderResponse{Document: doc, Missing: doc.MissingFields()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be json, html or text"})
	}
}

// Schema returns the JSON schema the structured-completion service is held to.
func (h *Handler) Schema(c *gin.Context) {
	c.JSON(http.StatusOK, scribe.ClinicalRecordSchema())
}

func (h *Handler) bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		h.writeBodyError(c, err)
		return false
	}
	return true
}

func (h *Handler) writeBodyError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}

// writeError maps the scribe error kinds onto HTTP statuses.
func (h *Handler) writeError(c *gin.Context, err error) {
	var (
		inputErr  *scribe.InputError
		valErr    *scribe.ValidationError
		collabErr *scribe.CollaboratorError
		renderErr *scribe.RenderError
	)
	reqID := c.GetString(requestIDKey)

	switch {
	case errors.As(err, &inputErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": inputErr.Error(), "field": inputErr.Field})
	case errors.As(err, &renderErr):
		h.logger.Error("render rejected a record", zap.String("request_id", reqID), zap.Error(err))
		errors.As(err, &valErr)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "record is not renderable", "violations": violations(valErr)})
	case errors.As(err, &valErr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "record failed validation", "violations": valErr.Violations})
	case errors.As(err, &collabErr):
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		h.logger.Warn("completion service failed",
			zap.String("op", collabErr.Op),
			zap.String("request_id", reqID),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(status, gin.H{"error": "completion service failed"})
	default:
		h.logger.Error("request failed", zap.String("request_id", reqID), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func violations(ve *scribe.ValidationError) []scribe.FieldViolation {
	if ve == nil {
		return nil
	}
	return ve.Violations
}
