package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"indoors/internal/api/validation"
	"indoors/internal/core/model"
	"indoors/internal/core/service"
)

type PositionHandler struct {
	ingestionService service.IngestionService
	positionService  service.PositionService
}

func NewPositionHandler(ingestionService service.IngestionService, positionService service.PositionService) *PositionHandler {
	return &PositionHandler{
		ingestionService: ingestionService,
		positionService:  positionService,
	}
}

type readingRequest struct {
	BSSID string `json:"BSSID" validate:"required"`
	RSSI  *int   `json:"RSSI" validate:"required,gte=-127,lte=0"`
	SSID  string `json:"SSID"`
}

type fingerprintRequest struct {
	Readings   []readingRequest `json:"wifi_stat" validate:"required,min=1,dive"`
	UploadTime int64            `json:"upload_time" validate:"gte=0"`
}

// uploadRequest accepts a single fingerprint or the legacy wifi_stats list.
// Omitting both x and y records a new location at the origin.
type uploadRequest struct {
	X           *float64             `json:"x" validate:"required_with=Y"`
	Y           *float64             `json:"y" validate:"required_with=X"`
	Fingerprint *fingerprintRequest  `json:"fingerprint"`
	Samples     []fingerprintRequest `json:"wifi_stats" validate:"omitempty,dive"`
}

type uploadResponse struct {
	Outcome service.MergeOutcome `json:"outcome"`
	Samples int                  `json:"samples"`
}

// locateRequest takes a bare scan or the legacy room position body, whose
// first wifi_stats entry is the scan.
type locateRequest struct {
	Readings []readingRequest     `json:"wifi_stat" validate:"omitempty,dive"`
	Samples  []fingerprintRequest `json:"wifi_stats" validate:"omitempty,dive"`
}

func (req locateRequest) scan() []readingRequest {
	if len(req.Readings) > 0 {
		return req.Readings
	}
	if len(req.Samples) > 0 {
		return req.Samples[0].Readings
	}
	return nil
}

func toSample(readings []readingRequest, uploadTime int64) model.FingerprintSample {
	aps := make([]model.AccessPointReading, len(readings))
	for i, r := range readings {
		aps[i] = model.AccessPointReading{BSSID: r.BSSID, RSSI: *r.RSSI, SSID: r.SSID}
	}

	var capturedAt time.Time
	if uploadTime > 0 {
		capturedAt = time.UnixMilli(uploadTime)
	}
	return model.NewFingerprintSample(aps, capturedAt)
}

func (h *PositionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	roomID, ok := requireRoomID(w, r)
	if !ok {
		return
	}

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		http.Error(w, verr.Error(), http.StatusBadRequest)
		return
	}

	fingerprints := req.Samples
	if req.Fingerprint != nil {
		fingerprints = append([]fingerprintRequest{*req.Fingerprint}, fingerprints...)
	}
	if len(fingerprints) == 0 {
		http.Error(w, "fingerprint or wifi_stats is required", http.StatusBadRequest)
		return
	}

	samples := make([]model.FingerprintSample, len(fingerprints))
	for i, fp := range fingerprints {
		samples[i] = toSample(fp.Readings, fp.UploadTime)
	}

	var coord *model.Coordinate
	if req.X != nil && req.Y != nil {
		coord = &model.Coordinate{X: *req.X, Y: *req.Y}
	}

	outcome, err := h.ingestionService.Ingest(r.Context(), roomID, coord, samples...)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{Outcome: outcome, Samples: len(samples)})
}

func (h *PositionHandler) Locate(w http.ResponseWriter, r *http.Request) {
	roomID, ok := requireRoomID(w, r)
	if !ok {
		return
	}

	var req locateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		http.Error(w, verr.Error(), http.StatusBadRequest)
		return
	}

	readings := req.scan()
	if len(readings) == 0 {
		http.Error(w, "wifi_stat or wifi_stats is required", http.StatusBadRequest)
		return
	}

	coord, err := h.positionService.Locate(r.Context(), roomID, toSample(readings, 0))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, coord)
}
