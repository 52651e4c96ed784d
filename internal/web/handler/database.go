package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/fxdesk/internal/model"
	"github.com/mcoot/fxdesk/internal/services/auth"
	"github.com/mcoot/fxdesk/internal/services/batch"
	"github.com/mcoot/fxdesk/internal/services/browser"
	"github.com/mcoot/fxdesk/internal/services/coercion"
	"github.com/mcoot/fxdesk/internal/web/middleware"
	"github.com/mcoot/fxdesk/internal/web/templates/layout"
	"github.com/mcoot/fxdesk/internal/web/templates/pages"
)

// Form size limits
const (
	maxInsertRows   = 100
	maxInsertFields = 50
)

// DatabaseHandler serves the database management pages
type DatabaseHandler struct {
	browser     *browser.Service
	executor    *batch.Executor
	engine      *coercion.Engine
	authService *auth.Service
	logger      *slog.Logger
}

// NewDatabaseHandler creates a new DatabaseHandler
func NewDatabaseHandler(browserService *browser.Service, executor *batch.Executor, engine *coercion.Engine, authService *auth.Service, logger *slog.Logger) *DatabaseHandler {
	return &DatabaseHandler{
		browser:     browserService,
		executor:    executor,
		engine:      engine,
		authService: authService,
		logger:      logger,
	}
}

// Index sends the user to the default action
func (h *DatabaseHandler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/db/"+string(model.ActionFetch), http.StatusSeeOther)
}

// Show renders the page for the action in the path
func (h *DatabaseHandler) Show(w http.ResponseWriter, r *http.Request) {
	action, err := model.ParseAction(mux.Vars(r)["action"])
	if err != nil {
		http.NotFound(w, r)
		return
	}
	h.renderAction(w, r, action, nil)
}

// SelectTarget remembers the collection the user picked for an action
func (h *DatabaseHandler) SelectTarget(w http.ResponseWriter, r *http.Request) {
	action, err := model.ParseAction(mux.Vars(r)["action"])
	if err != nil {
		http.NotFound(w, r)
		return
	}

	target := model.Target{
		Database:   strings.TrimSpace(r.FormValue("database")),
		Collection: strings.TrimSpace(r.FormValue("collection")),
	}
	if !target.Valid() {
		redirectWithFlash(w, r, "/db/"+string(action), "error", "Please select a database and a collection")
		return
	}

	middleware.GetSession(r.Context()).SetTarget(action, target)
	http.Redirect(w, r, "/db/"+string(action), http.StatusSeeOther)
}

// Create creates a new collection
func (h *DatabaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	target := model.Target{
		Database:   strings.TrimSpace(r.FormValue("database")),
		Collection: strings.TrimSpace(r.FormValue("collection")),
	}

	var notice pages.Notice
	err := h.browser.CreateCollection(r.Context(), target)
	switch {
	case err == nil:
		notice = pages.Notice{Type: "success", Message: fmt.Sprintf("Collection %s created", target)}
		// Creating a collection is usually followed by filling it
		middleware.GetSession(r.Context()).SetTarget(model.ActionInsert, target)
	case errors.Is(err, model.ErrInvalidTarget):
		notice = pages.Notice{Type: "error", Message: "Please enter a database and a collection name"}
	case errors.Is(err, model.ErrCollectionExists):
		notice = pages.Notice{Type: "warning", Message: fmt.Sprintf("Collection %s already exists", target)}
	default:
		h.logger.Error("failed to create collection", slog.String("target", target.String()), slog.String("error", err.Error()))
		notice = pages.Notice{Type: "error", Message: "Failed to create collection: " + err.Error()}
	}

	h.renderAction(w, r, model.ActionCreate, []pages.Notice{notice})
}

// Insert stores the rows of the insert form
func (h *DatabaseHandler) Insert(w http.ResponseWriter, r *http.Request) {
	target, ok := middleware.GetSession(r.Context()).Target(model.ActionInsert)
	if !ok {
		h.renderAction(w, r, model.ActionInsert, []pages.Notice{noTargetNotice()})
		return
	}

	schema, names, notices := schemaFromForm(r)
	rows := boundedInt(r.FormValue("row_count"), 1, maxInsertRows)

	var docs []model.Document
	for row := range rows {
		raw := make(map[string]any, len(names))
		for i, name := range names {
			if name == "" {
				continue
			}
			raw[name] = r.FormValue(fmt.Sprintf("value_%d_%d", row, i))
		}
		res := h.engine.PrepareInsert(raw, schema)
		for _, warning := range res.Warnings {
			notices = append(notices, pages.Notice{Type: "warning", Message: fmt.Sprintf("Row %d: %s", row+1, warning)})
		}
		if res.Empty() {
			continue
		}
		docs = append(docs, res.Document)
	}

	switch len(docs) {
	case 0:
		notices = append(notices, pages.Notice{Type: "warning", Message: "Nothing to insert"})
	case 1:
		if err := h.executor.InsertOne(r.Context(), &target, docs[0]); err != nil {
			notices = append(notices, pages.Notice{Type: "error", Message: "Failed to insert document: " + err.Error()})
		} else {
			notices = append(notices, pages.Notice{Type: "success", Message: "Inserted 1 document"})
		}
	default:
		res, err := h.executor.Execute(r.Context(), &target, batch.InsertBatch{Documents: docs})
		notices = append(notices, resultNotices("Inserted", res, err)...)
	}

	h.renderAction(w, r, model.ActionInsert, notices)
}

// Update saves the cells of the update table that changed
func (h *DatabaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	target, ok := middleware.GetSession(r.Context()).Target(model.ActionUpdate)
	if !ok {
		h.renderAction(w, r, model.ActionUpdate, []pages.Notice{noTargetNotice()})
		return
	}

	table, err := h.browser.Snapshot(r.Context(), target)
	if err != nil {
		h.renderAction(w, r, model.ActionUpdate, []pages.Notice{snapshotNotice(err)})
		return
	}

	current := make(map[string]model.Document, len(table.Rows))
	for i, doc := range table.Rows {
		current[table.RowID(i)] = doc
	}

	columns, schema, notices := columnsFromForm(r, len(table.Columns))
	changes := make(map[string]model.Document)
	for i := range boundedInt(r.FormValue("row_count"), 0, len(table.Rows)) {
		id := r.FormValue(fmt.Sprintf("row_id_%d", i))
		doc, found := current[id]
		if !found {
			continue
		}

		raw := make(map[string]any)
		for j, col := range columns {
			if col == "" || model.IsReserved(col) {
				continue
			}
			submitted := strings.TrimSpace(r.FormValue(fmt.Sprintf("cell_%d_%d", i, j)))
			if submitted != browser.FormatValue(doc[col]) {
				raw[col] = submitted
			}
		}

		res := h.engine.PrepareUpdate(raw, schema)
		for _, warning := range res.Warnings {
			notices = append(notices, pages.Notice{Type: "warning", Message: fmt.Sprintf("Document %s: %s", id, warning)})
		}
		if !res.Empty() {
			changes[id] = res.Document
		}
	}

	switch len(changes) {
	case 0:
		notices = append(notices, pages.Notice{Type: "info", Message: "No changes to save"})
	case 1:
		for id, fields := range changes {
			if err := h.executor.UpdateOne(r.Context(), &target, id, fields); err != nil {
				notices = append(notices, pages.Notice{Type: "error", Message: "Failed to update document: " + err.Error()})
			} else {
				notices = append(notices, pages.Notice{Type: "success", Message: "Updated 1 document"})
			}
		}
	default:
		res, err := h.executor.Execute(r.Context(), &target, batch.UpdateBatch{Changes: changes})
		notices = append(notices, resultNotices("Updated", res, err)...)
	}

	h.renderAction(w, r, model.ActionUpdate, notices)
}

// Delete removes the selected documents once the user has confirmed with
// their secondary password
func (h *DatabaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	target, ok := sess.Target(model.ActionDelete)
	if !ok {
		h.renderAction(w, r, model.ActionDelete, []pages.Notice{noTargetNotice()})
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderAction(w, r, model.ActionDelete, []pages.Notice{{Type: "error", Message: "Invalid form data"}})
		return
	}

	var ids []string
	for _, id := range r.PostForm["id"] {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	var notices []pages.Notice
	switch {
	case len(ids) == 0:
		notices = append(notices, pages.Notice{Type: "warning", Message: "Select at least one row to delete"})
	case r.PostFormValue("confirm") != "yes":
		notices = append(notices, pages.Notice{Type: "warning", Message: "Please confirm the deletion"})
	case !h.authService.CheckSecondary(r.Context(), sess.Username, r.PostFormValue("secondary_password")):
		notices = append(notices, pages.Notice{Type: "error", Message: "Invalid secondary password"})
	case len(ids) == 1:
		if err := h.executor.DeleteOne(r.Context(), &target, ids[0]); err != nil {
			notices = append(notices, pages.Notice{Type: "error", Message: "Failed to delete document: " + err.Error()})
		} else {
			notices = append(notices, pages.Notice{Type: "success", Message: "Deleted 1 document"})
		}
	default:
		res, err := h.executor.Execute(r.Context(), &target, batch.DeleteBatch{IDs: ids})
		notices = append(notices, resultNotices("Deleted", res, err)...)
	}

	h.renderAction(w, r, model.ActionDelete, notices)
}

func (h *DatabaseHandler) renderAction(w http.ResponseWriter, r *http.Request, action model.Action, notices []pages.Notice) {
	ctx := r.Context()
	sess := middleware.GetSession(ctx)

	data := pages.DatabaseData{
		PageData: pageData(r, layout.TabDatabase, layout.TabDatabase),
		Action:   action,
		Notices:  notices,
	}

	databases, err := h.browser.ListDatabases(ctx)
	if err != nil {
		h.logger.Warn("failed to list databases", slog.String("error", err.Error()))
		data.Notices = append(data.Notices, pages.Notice{Type: "warning", Message: "Could not connect to the database. Please try again later."})
	}
	data.Databases = databases

	data.Target, data.HasTarget = sess.Target(action)
	if data.Target.Database != "" {
		data.Collections, _ = h.browser.ListCollections(ctx, data.Target.Database)
	}

	if data.HasTarget && action != model.ActionCreate {
		table, err := h.browser.Snapshot(ctx, data.Target)
		switch {
		case err == nil:
			data.Table = table
		case errors.Is(err, model.ErrNoDocuments) && action == model.ActionInsert:
		default:
			data.Notices = append(data.Notices, snapshotNotice(err))
		}
	}

	if action == model.ActionInsert {
		data.Rows = boundedInt(r.URL.Query().Get("rows"), 1, maxInsertRows)
		data.Fields = insertFields(data.Table, boundedInt(r.URL.Query().Get("fields"), 1, maxInsertFields))
	}

	render(w, r, h.logger, http.StatusOK, pages.Database(data))
}

// insertFields returns the columns of the insert form: the business fields of
// the existing documents with a suggested type, or count blank fields for an
// empty collection
func insertFields(table *browser.Table, count int) []pages.InsertField {
	if table != nil {
		schema := coercion.SuggestSchema(table.Rows)
		if names := schema.Fields(); len(names) > 0 {
			fields := make([]pages.InsertField, len(names))
			for i, name := range names {
				fields[i] = pages.InsertField{Name: name, Type: schema[name], Fixed: true}
			}
			return fields
		}
	}
	fields := make([]pages.InsertField, count)
	for i := range fields {
		fields[i] = pages.InsertField{Type: coercion.TypeString}
	}
	return fields
}

// schemaFromForm reads the field_name_i and field_type_i pairs of the insert
// form. names keeps the form order so values can be matched by index.
func schemaFromForm(r *http.Request) (coercion.Schema, []string, []pages.Notice) {
	count := boundedInt(r.FormValue("field_count"), 0, maxInsertFields)
	schema := make(coercion.Schema, count)
	names := make([]string, count)
	var notices []pages.Notice

	for i := range count {
		name := strings.TrimSpace(r.FormValue(fmt.Sprintf("field_name_%d", i)))
		if name == "" {
			continue
		}
		names[i] = name
		fieldType, err := coercion.ParseFieldType(r.FormValue(fmt.Sprintf("field_type_%d", i)))
		if err != nil {
			notices = append(notices, pages.Notice{Type: "warning", Message: fmt.Sprintf("%s: unknown type, stored as text", name)})
			fieldType = coercion.TypeString
		}
		schema[name] = fieldType
	}
	return schema, names, notices
}

// columnsFromForm reads the col_j and col_type_j pairs of the update form.
// Columns without a valid type are left out of the schema so changed cells
// in them are stored as text with a warning.
func columnsFromForm(r *http.Request, limit int) ([]string, coercion.Schema, []pages.Notice) {
	columns := make([]string, boundedInt(r.FormValue("col_count"), 0, limit))
	schema := make(coercion.Schema, len(columns))
	var notices []pages.Notice

	for j := range columns {
		col := r.FormValue(fmt.Sprintf("col_%d", j))
		columns[j] = col
		if col == "" || model.IsReserved(col) {
			continue
		}
		raw := r.FormValue(fmt.Sprintf("col_type_%d", j))
		if raw == "" {
			continue
		}
		fieldType, err := coercion.ParseFieldType(raw)
		if err != nil {
			notices = append(notices, pages.Notice{Type: "warning", Message: fmt.Sprintf("%s: unknown type, stored as text", col)})
			continue
		}
		schema[col] = fieldType
	}
	return columns, schema, notices
}

func resultNotices(verb string, res batch.Result, err error) []pages.Notice {
	if err != nil {
		return []pages.Notice{{Type: "error", Message: err.Error()}}
	}
	notices := []pages.Notice{{Type: "success", Message: fmt.Sprintf("%s %d document(s)", verb, res.Success)}}
	if res.Errors > 0 {
		notices = append(notices, pages.Notice{Type: "error", Message: fmt.Sprintf("%d document(s) failed", res.Errors)})
	}
	return notices
}

func snapshotNotice(err error) pages.Notice {
	if errors.Is(err, model.ErrNoDocuments) {
		return pages.Notice{Type: "info", Message: "No data found in the specified collection."}
	}
	return pages.Notice{Type: "warning", Message: "Could not load the collection: " + err.Error()}
}

func noTargetNotice() pages.Notice {
	return pages.Notice{Type: "warning", Message: "Please select a database and a collection first"}
}

// boundedInt parses s, falling back to lo and clamping to [lo, hi]
func boundedInt(s string, lo, hi int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < lo {
		return lo
	}
	return min(n, hi)
}
