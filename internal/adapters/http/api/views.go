package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// DepartmentsHandler serves the selectable departments.
type DepartmentsHandler struct {
	deps Dependencies
}

// NewDepartmentsHandler creates a new departments handler.
func NewDepartmentsHandler(deps Dependencies) *DepartmentsHandler {
	return &DepartmentsHandler{deps: deps}
}

type departmentsResponse struct {
	Departments []string `json:"departments"`
}

// HandleDepartments handles GET /api/departments requests.
func (h *DepartmentsHandler) HandleDepartments(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_departments"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if h.deps.DatasetID() == "" {
		writeFailure(w, Wrap(op, ErrNotReady))
		return
	}
	depts, err := h.deps.Departments(r.Context())
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	if depts == nil {
		depts = []string{}
	}
	writeJSON(w, http.StatusOK, departmentsResponse{Departments: depts})
}

// ViewsHandler serves the three derived views as JSON.
type ViewsHandler struct {
	deps Dependencies
}

// NewViewsHandler creates a new views handler.
func NewViewsHandler(deps Dependencies) *ViewsHandler {
	return &ViewsHandler{deps: deps}
}

// HandleViews handles GET /api/views?department=X requests. An absent or
// empty department selects all records; an unknown one yields empty views.
func (h *ViewsHandler) HandleViews(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_views"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	dept := departmentParam(r)
	id := h.deps.DatasetID()
	if id == "" {
		writeFailure(w, Wrap(op, ErrNotReady))
		return
	}

	tag := etag(id, dept)
	if matchesETag(r.Header.Get("If-None-Match"), tag) {
		w.Header().Set("ETag", tag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	v, err := h.deps.Views(r.Context(), dept)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		writeFailure(w, Wrap(op, err))
		return
	}
	w.Header().Set("ETag", tag)
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, http.StatusOK, v)
}

// departmentParam returns the filter exactly as sent. Values that match no
// department are a filter miss, so nothing is rejected or normalised here.
func departmentParam(r *http.Request) string {
	return r.URL.Query().Get("department")
}

// etag derives a stable validator from the dataset snapshot and the filter.
// The dataset never changes after load, so the pair fully determines the body.
func etag(datasetID, department string) string {
	return `"` + uuid.NewSHA1(uuid.NameSpaceOID, []byte(datasetID+"\x00"+department)).String() + `"`
}

func matchesETag(header, tag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == tag {
			return true
		}
	}
	return false
}
