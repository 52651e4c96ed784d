package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/fxdesk/internal/api/apierr"
	"github.com/mcoot/fxdesk/internal/api/middleware"
	"github.com/mcoot/fxdesk/internal/api/request"
	"github.com/mcoot/fxdesk/internal/api/response"
	"github.com/mcoot/fxdesk/internal/model"
	"github.com/mcoot/fxdesk/internal/services/auth"
	"github.com/mcoot/fxdesk/internal/services/batch"
	"github.com/mcoot/fxdesk/internal/services/browser"
	"github.com/mcoot/fxdesk/internal/services/coercion"
)

// maxBatchSize bounds the number of entries in one batch request
const maxBatchSize = 1000

// Batch kinds accepted by the batch endpoint
const (
	BatchInsert = "insert"
	BatchUpdate = "update"
	BatchDelete = "delete"
)

// DocumentsHandler handles the collection browsing and editing endpoints
type DocumentsHandler struct {
	browser     *browser.Service
	executor    *batch.Executor
	engine      *coercion.Engine
	authService *auth.Service
	logger      *slog.Logger
}

// NewDocumentsHandler creates a new documents handler
func NewDocumentsHandler(browserService *browser.Service, executor *batch.Executor, engine *coercion.Engine, authService *auth.Service, logger *slog.Logger) *DocumentsHandler {
	return &DocumentsHandler{
		browser:     browserService,
		executor:    executor,
		engine:      engine,
		authService: authService,
		logger:      logger,
	}
}

// ListDatabases handles GET /api/v1/databases
func (h *DocumentsHandler) ListDatabases(w http.ResponseWriter, r *http.Request) {
	names, err := h.browser.ListDatabases(r.Context())
	if err != nil {
		WriteError(w, h.storeError(err))
		return
	}
	response.JSON(w, http.StatusOK, response.Databases{Databases: names})
}

// ListCollections handles GET /api/v1/databases/{db}/collections
func (h *DocumentsHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	database := mux.Vars(r)["db"]
	names, err := h.browser.ListCollections(r.Context(), database)
	if err != nil {
		WriteError(w, h.storeError(err))
		return
	}
	response.JSON(w, http.StatusOK, response.Collections{Database: database, Collections: names})
}

// CreateCollection handles POST /api/v1/databases/{db}/collections/{collection}
func (h *DocumentsHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	target := targetFromPath(r)
	if err := h.browser.CreateCollection(r.Context(), target); err != nil {
		WriteError(w, h.storeError(err))
		return
	}
	response.JSON(w, http.StatusCreated, response.Collections{
		Database:    target.Database,
		Collections: []string{target.Collection},
	})
}

// Documents handles GET /api/v1/databases/{db}/collections/{collection}/documents
func (h *DocumentsHandler) Documents(w http.ResponseWriter, r *http.Request) {
	target := targetFromPath(r)
	table, err := h.browser.Snapshot(r.Context(), target)
	if err != nil {
		WriteError(w, h.storeError(err))
		return
	}
	response.JSON(w, http.StatusOK, response.DocumentsFromTable(target, table))
}

// Batch handles POST /api/v1/databases/{db}/collections/{collection}/batch
func (h *DocumentsHandler) Batch(w http.ResponseWriter, r *http.Request) {
	target := targetFromPath(r)

	var req request.BatchRequest
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}

	schema, err := parseSchema(req.Schema)
	if err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}

	var (
		b        batch.Batch
		warnings []string
	)
	switch strings.ToLower(req.Kind) {
	case BatchInsert:
		if len(req.Rows) == 0 || len(req.Rows) > maxBatchSize {
			WriteError(w, NewInvalidRequestError(fmt.Sprintf("rows must hold 1 to %d documents", maxBatchSize)))
			return
		}
		docs := make([]model.Document, 0, len(req.Rows))
		for i, row := range req.Rows {
			res := h.engine.PrepareInsert(row, schema)
			warnings = append(warnings, prefixed(fmt.Sprintf("row %d", i+1), res.Warnings)...)
			if !res.Empty() {
				docs = append(docs, res.Document)
			}
		}
		b = batch.InsertBatch{Documents: docs}

	case BatchUpdate:
		if len(req.Changes) == 0 || len(req.Changes) > maxBatchSize {
			WriteError(w, NewInvalidRequestError(fmt.Sprintf("changes must hold 1 to %d documents", maxBatchSize)))
			return
		}
		changes := make(map[string]model.Document, len(req.Changes))
		for id, fields := range req.Changes {
			res := h.engine.PrepareUpdate(fields, schema)
			warnings = append(warnings, prefixed("document "+id, res.Warnings)...)
			if !res.Empty() {
				changes[id] = res.Document
			}
		}
		b = batch.UpdateBatch{Changes: changes}

	case BatchDelete:
		if len(req.IDs) == 0 || len(req.IDs) > maxBatchSize {
			WriteError(w, NewInvalidRequestError(fmt.Sprintf("ids must hold 1 to %d documents", maxBatchSize)))
			return
		}
		claims := middleware.MustGetClaims(r.Context())
		if !h.authService.CheckSecondary(r.Context(), claims.Username(), req.SecondaryPassword) {
			WriteError(w, apierr.NewSecondaryRejectedError())
			return
		}
		b = batch.DeleteBatch{IDs: req.IDs}

	default:
		WriteError(w, NewInvalidRequestError("kind must be insert, update or delete"))
		return
	}

	res, err := h.executor.Execute(r.Context(), &target, b)
	if err != nil {
		WriteError(w, h.storeError(err))
		return
	}
	response.JSON(w, http.StatusOK, response.BatchResultFromModel(res, warnings))
}

// storeError logs unexpected store failures before they are mapped
func (h *DocumentsHandler) storeError(err error) error {
	if apierr.IsInternal(err) {
		h.logger.Error("document store request failed", slog.String("error", err.Error()))
	}
	return err
}

func targetFromPath(r *http.Request) model.Target {
	vars := mux.Vars(r)
	return model.Target{Database: vars["db"], Collection: vars["collection"]}
}

func parseSchema(raw map[string]string) (coercion.Schema, error) {
	schema := make(coercion.Schema, len(raw))
	for field, name := range raw {
		t, err := coercion.ParseFieldType(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		schema[field] = t
	}
	return schema, nil
}

func prefixed(prefix string, warnings []coercion.Warning) []string {
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = prefix + ": " + w.String()
	}
	return out
}
