package servicetwin

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type categoryRequest struct {
	Name *string `json:"name"`
}

// CreateCategory handles POST /category
func (t *Twin) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		writeError(w, http.StatusBadRequest, "The 'name' field is required.")
		return
	}
	c := t.store.AddCategory(Category{Name: *req.Name})
	writeJSON(w, t.createdStatus(), c)
}

// ListCategories handles GET /category
func (t *Twin) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, t.store.Categories())
}

// GetCategory handles GET /category/{id}
func (t *Twin) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, ok := t.store.GetCategory(chi.URLParam(r, "id"))
	if !ok {
		t.writeMissing(w)
		return
	}
	t.writeRecord(w, c)
}

// UpdateCategory handles PUT /category/{id}
func (t *Twin) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	c, ok := t.store.UpdateCategory(chi.URLParam(r, "id"), func(c *Category) {
		if req.Name != nil && !t.config.Quirks.IgnoreUpdates {
			c.Name = *req.Name
		}
	})
	if !ok {
		t.writeMissing(w)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteCategory handles DELETE /category/{id}
func (t *Twin) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var (
		c  Category
		ok bool
	)
	if t.config.Quirks.IgnoreDeletes {
		c, ok = t.store.GetCategory(id)
	} else {
		c, ok = t.store.DeleteCategory(id)
	}
	if !ok {
		t.writeMissing(w)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
