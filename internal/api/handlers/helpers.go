package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"hub-ops-service/internal/platform/obs"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: req_id=%s method=%s path=%s err=%v", obs.RequestID(r.Context()), r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeUnavailable logs the cause and returns a generic 503.
func writeUnavailable(w http.ResponseWriter, r *http.Request, op string, err error) {
	log.Printf("req_id=%s op=%s err=%v", obs.RequestID(r.Context()), op, err)
	writeError(w, r, http.StatusServiceUnavailable, "dwell log unavailable")
}

var errEmptyBody = errors.New("empty body")

// decodeJSON reads exactly one JSON object. An empty body is reported as
// errEmptyBody so callers can treat the payload as optional.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return errors.New("invalid json body")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain only one JSON object")
	}
	return nil
}
