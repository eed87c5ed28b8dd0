package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jacoelho/rowmap/internal/apperr"
	"github.com/jacoelho/rowmap/internal/logger"
	"github.com/jacoelho/rowmap/internal/mapping"
	"github.com/jacoelho/rowmap/internal/metrics"
	"github.com/jacoelho/rowmap/internal/projection"
	"github.com/jacoelho/rowmap/internal/source"
	"github.com/jacoelho/rowmap/internal/store"
	"github.com/jacoelho/rowmap/internal/value"
)

type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type fetchURLRequest struct {
	URL string `json:"url"`
}

type fetchRedisRequest struct {
	Key string `json:"key"`
}

type previewRequest struct {
	Document any            `json:"document"`
	Mapping  mapping.Rules  `json:"mapping"`
	Filter   *mapping.Query `json:"filter,omitempty"`
}

type saveRequest struct {
	Source  source.Source  `json:"source"`
	Mapping mapping.Rules  `json:"mapping"`
	Filter  *mapping.Query `json:"filter,omitempty"`
}

type saveResponse struct {
	Success   bool   `json:"success"`
	ConfigID  string `json:"configId"`
	AccessURL string `json:"accessUrl"`
}

func render(c *gin.Context, status int, body any) {
	data, err := value.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		data = []byte(`{"success":false,"error":"failed to encode response"}`)
	}
	c.Data(status, "application/json; charset=utf-8", data)
}

func ok(c *gin.Context, data any) {
	render(c, http.StatusOK, successResponse{Success: true, Data: data})
}

func fail(c *gin.Context, err error) {
	appErr := apperr.From(err)
	render(c, appErr.Code, errorResponse{Success: false, Error: appErr.Message})
}

// bind reads the request body, checks it against schema when one is given and decodes it into target.
func (s *Server) bind(c *gin.Context, schema mapping.Schema, target any) error {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, s.maxRequestBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.New(http.StatusRequestEntityTooLarge, "request body too large", err)
		}
		return apperr.BadRequest("failed to read request body")
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return apperr.BadRequest("request body is required")
	}

	if schema != "" {
		if err := mapping.ValidatePayload(schema, body); err != nil {
			return err
		}
	}

	if err := value.Unmarshal(body, target); err != nil {
		return apperr.New(http.StatusBadRequest, "invalid request body", err)
	}
	return nil
}

func (s *Server) fetchURL(c *gin.Context) {
	var req fetchURLRequest
	if err := s.bind(c, "", &req); err != nil {
		fail(c, err)
		return
	}

	doc, err := s.fetcher.Fetch(c.Request.Context(), source.Source{Type: source.URL, Value: req.URL})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, doc)
}

func (s *Server) fetchRedis(c *gin.Context) {
	var req fetchRedisRequest
	if err := s.bind(c, "", &req); err != nil {
		fail(c, err)
		return
	}

	doc, err := s.fetcher.Fetch(c.Request.Context(), source.Source{Type: source.Redis, Value: req.Key})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, doc)
}

func (s *Server) preview(c *gin.Context) {
	var req previewRequest
	if err := s.bind(c, mapping.PreviewSchema, &req); err != nil {
		fail(c, err)
		return
	}

	rows, err := evaluate(req.Document, req.Mapping, req.Filter)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, rows)
}

func (s *Server) saveMapping(c *gin.Context) {
	var req saveRequest
	if err := s.bind(c, mapping.SaveSchema, &req); err != nil {
		fail(c, err)
		return
	}

	if err := req.Source.Validate(); err != nil {
		fail(c, err)
		return
	}
	if _, err := mapping.Compile(req.Mapping, req.Filter); err != nil {
		fail(c, err)
		return
	}

	cfg := store.Config{
		Source:  req.Source,
		Mapping: req.Mapping,
		Filter:  req.Filter,
	}
	if err := s.save(c.Request.Context(), &cfg); err != nil {
		fail(c, fmt.Errorf("save configuration: %w", err))
		return
	}
	id := cfg.ID

	logger.FromContext(c.Request.Context(), s.logger).Info("mapping saved",
		slog.String("config_id", id),
		slog.String("source", cfg.Source.Redacted()))

	render(c, http.StatusOK, saveResponse{
		Success:   true,
		ConfigID:  id,
		AccessURL: "/api/data/" + id,
	})
}

// saveAttempts bounds retries when another replica sharing the store took the same ID.
const saveAttempts = 3

// save assigns cfg a fresh ID and stores it, drawing a new ID on conflict.
func (s *Server) save(ctx context.Context, cfg *store.Config) error {
	var err error
	for range saveAttempts {
		cfg.ID, cfg.CreatedAt = s.ids.Next()
		if err = s.store.Save(ctx, *cfg); !errors.Is(err, store.ErrConflict) {
			return err
		}
	}
	return err
}

func (s *Server) data(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("configId")

	if err := store.ValidateID(id); err != nil {
		fail(c, err)
		return
	}

	cfg, err := s.store.Get(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}

	plan, err := cfg.Plan()
	if err != nil {
		fail(c, err)
		return
	}

	page, err := plan.Page().Merge(c.Query("startIndex"), c.Query("limit"))
	if err != nil {
		fail(c, err)
		return
	}
	if plan, err = plan.WithPage(page); err != nil {
		fail(c, err)
		return
	}

	doc, err := s.fetcher.Fetch(ctx, cfg.Source)
	if err != nil {
		fail(c, err)
		return
	}

	rows, err := plan.Apply(doc)
	metrics.ObserveEvaluation(len(rows), err)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, nonNil(rows))
}

func evaluate(document any, rules mapping.Rules, query *mapping.Query) ([]projection.Row, error) {
	rows, err := mapping.Apply(document, rules, query)
	metrics.ObserveEvaluation(len(rows), err)
	if err != nil {
		return nil, err
	}
	return nonNil(rows), nil
}

func nonNil(rows []projection.Row) []projection.Row {
	if rows == nil {
		return []projection.Row{}
	}
	return rows
}
