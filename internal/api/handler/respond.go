package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"indoors/internal/core/model"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps engine errors to status codes so callers can tell a bad room
// id from a room with nothing to compare against.
func writeError(w http.ResponseWriter, err error) {
	var storeErr *model.StoreError
	switch {
	case errors.Is(err, model.ErrMalformedSample):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, model.ErrRoomNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, model.ErrNoCandidates):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, model.ErrStoreUnavailable):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case errors.As(err, &storeErr):
		http.Error(w, "Room store error", http.StatusInternalServerError)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func requireRoomID(w http.ResponseWriter, r *http.Request) (string, bool) {
	roomID := r.URL.Query().Get("room_id")
	if roomID == "" {
		http.Error(w, "need param room_id", http.StatusBadRequest)
		return "", false
	}
	return roomID, true
}
