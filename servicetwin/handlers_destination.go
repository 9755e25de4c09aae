package servicetwin

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type destinationRequest struct {
	Name            *string   `json:"name"`
	Location        *string   `json:"location"`
	Description     *string   `json:"description"`
	BestTimeToVisit *string   `json:"bestTimeToVisit"`
	Attractions     *[]string `json:"attractions"`
	Category        *string   `json:"category"`
}

// destinationView is a destination as the service returns it, with the category embedded.
type destinationView struct {
	ID              string    `json:"_id"`
	Name            string    `json:"name"`
	Location        string    `json:"location"`
	Description     string    `json:"description"`
	BestTimeToVisit string    `json:"bestTimeToVisit"`
	Attractions     []string  `json:"attractions"`
	Category        *Category `json:"category"`
}

func (t *Twin) viewDestination(d Destination) destinationView {
	v := destinationView{
		ID:              d.ID,
		Name:            d.Name,
		Location:        d.Location,
		Description:     d.Description,
		BestTimeToVisit: d.BestTimeToVisit,
		Attractions:     append([]string{}, d.Attractions...),
	}
	if t.config.Quirks.ReverseAttractions {
		for i, j := 0, len(v.Attractions)-1; i < j; i, j = i+1, j-1 {
			v.Attractions[i], v.Attractions[j] = v.Attractions[j], v.Attractions[i]
		}
	}
	if c, ok := t.store.GetCategory(d.CategoryID); ok {
		if t.config.Quirks.WrongEmbeddedCategory {
			c.ID = newID()
		}
		v.Category = &c
	}
	return v
}

// CreateDestination handles POST /destination
func (t *Twin) CreateDestination(w http.ResponseWriter, r *http.Request) {
	var req destinationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	for field, value := range map[string]*string{
		"name":            req.Name,
		"location":        req.Location,
		"bestTimeToVisit": req.BestTimeToVisit,
		"category":        req.Category,
	} {
		if value == nil || strings.TrimSpace(*value) == "" {
			writeError(w, http.StatusBadRequest, "The '"+field+"' field is required.")
			return
		}
	}
	if _, ok := t.store.GetCategory(*req.Category); !ok {
		writeError(w, http.StatusBadRequest, "Unknown category "+*req.Category)
		return
	}
	d := Destination{
		Name:            *req.Name,
		Location:        *req.Location,
		BestTimeToVisit: *req.BestTimeToVisit,
		CategoryID:      *req.Category,
		Attractions:     []string{},
	}
	if req.Description != nil {
		d.Description = *req.Description
	}
	if req.Attractions != nil {
		d.Attractions = *req.Attractions
	}
	d = t.store.AddDestination(d)
	writeJSON(w, t.createdStatus(), t.viewDestination(d))
}

// ListDestinations handles GET /destination
func (t *Twin) ListDestinations(w http.ResponseWriter, r *http.Request) {
	all := t.store.Destinations()
	views := make([]destinationView, 0, len(all))
	for _, d := range all {
		views = append(views, t.viewDestination(d))
	}
	writeJSON(w, http.StatusOK, views)
}

// GetDestination handles GET /destination/{id}
func (t *Twin) GetDestination(w http.ResponseWriter, r *http.Request) {
	d, ok := t.store.GetDestination(chi.URLParam(r, "id"))
	if !ok {
		t.writeMissing(w)
		return
	}
	t.writeRecord(w, t.viewDestination(d))
}

// UpdateDestination handles PUT /destination/{id}. Only the fields present in the body change.
func (t *Twin) UpdateDestination(w http.ResponseWriter, r *http.Request) {
	var req destinationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Category != nil {
		if _, ok := t.store.GetCategory(*req.Category); !ok {
			writeError(w, http.StatusBadRequest, "Unknown category "+*req.Category)
			return
		}
	}
	d, ok := t.store.UpdateDestination(chi.URLParam(r, "id"), func(d *Destination) {
		if t.config.Quirks.IgnoreUpdates {
			return
		}
		setIfPresent(&d.Name, req.Name)
		setIfPresent(&d.Location, req.Location)
		setIfPresent(&d.Description, req.Description)
		setIfPresent(&d.BestTimeToVisit, req.BestTimeToVisit)
		setIfPresent(&d.CategoryID, req.Category)
		if req.Attractions != nil {
			d.Attractions = append([]string{}, *req.Attractions...)
		}
		if t.config.Quirks.ClobberUnmentionedFields && req.Location == nil {
			d.Location += " (changed)"
		}
	})
	if !ok {
		t.writeMissing(w)
		return
	}
	writeJSON(w, http.StatusOK, t.viewDestination(d))
}

// DeleteDestination handles DELETE /destination/{id}
func (t *Twin) DeleteDestination(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var (
		d  Destination
		ok bool
	)
	if t.config.Quirks.IgnoreDeletes {
		d, ok = t.store.GetDestination(id)
	} else {
		d, ok = t.store.DeleteDestination(id)
	}
	if !ok {
		t.writeMissing(w)
		return
	}
	writeJSON(w, http.StatusOK, t.viewDestination(d))
}

func setIfPresent(target *string, value *string) {
	if value != nil {
		*target = *value
	}
}
