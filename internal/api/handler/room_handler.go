package handler

import (
	"net/http"
	"strconv"

	"indoors/internal/core/service"
)

type RoomHandler struct {
	roomService service.RoomService
}

func NewRoomHandler(roomService service.RoomService) *RoomHandler {
	return &RoomHandler{
		roomService: roomService,
	}
}

type createRoomResponse struct {
	RoomID string `json:"room_id"`
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("name")
	if name == "" {
		http.Error(w, "need param name", http.StatusBadRequest)
		return
	}

	width, err := parseFloatParam(q.Get("width"))
	if err != nil {
		http.Error(w, "invalid param width", http.StatusBadRequest)
		return
	}
	height, err := parseFloatParam(q.Get("height"))
	if err != nil {
		http.Error(w, "invalid param height", http.StatusBadRequest)
		return
	}

	room, err := h.roomService.CreateRoom(r.Context(), name, width, height, q.Get("image_url"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, createRoomResponse{RoomID: room.ID})
}

func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	roomID, ok := requireRoomID(w, r)
	if !ok {
		return
	}

	if err := h.roomService.DeleteRoom(r.Context(), roomID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *RoomHandler) Info(w http.ResponseWriter, r *http.Request) {
	roomID, ok := requireRoomID(w, r)
	if !ok {
		return
	}

	room, err := h.roomService.GetRoom(r.Context(), roomID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"room": room})
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := parseIntParam(q.Get("limit"), service.DefaultListLimit)
	if err != nil {
		http.Error(w, "invalid param limit", http.StatusBadRequest)
		return
	}
	offset, err := parseIntParam(q.Get("offset"), 0)
	if err != nil {
		http.Error(w, "invalid param offset", http.StatusBadRequest)
		return
	}

	rooms, err := h.roomService.ListRooms(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rooms": rooms})
}

func (h *RoomHandler) ClearPositions(w http.ResponseWriter, r *http.Request) {
	roomID, ok := requireRoomID(w, r)
	if !ok {
		return
	}

	if err := h.roomService.ClearPositions(r.Context(), roomID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseFloatParam(value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.ParseFloat(value, 64)
}

func parseIntParam(value string, defaultValue int) (int, error) {
	if value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}
