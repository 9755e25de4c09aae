package servicetwin

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"message": message})
}

// writeMissing reports a read of a record that does not exist. The service answers these with
// 200 and a null body.
func (t *Twin) writeMissing(w http.ResponseWriter) {
	if t.config.Quirks.NotFoundStatus != 0 {
		writeError(w, t.config.Quirks.NotFoundStatus, "not found")
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (t *Twin) createdStatus() int {
	if t.config.Quirks.CreatedStatus != 0 {
		return t.config.Quirks.CreatedStatus
	}
	return http.StatusOK
}

// writeRecord answers a read by id.
func (t *Twin) writeRecord(w http.ResponseWriter, v any) {
	if !t.config.Quirks.UnstableReads {
		writeJSON(w, http.StatusOK, v)
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	fields["readCount"] = t.reads.Add(1)
	writeJSON(w, http.StatusOK, fields)
}
