package router

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"indoors/internal/api/handler"
	"indoors/internal/api/middleware"
	"indoors/internal/core/service"
)

type Services struct {
	Rooms     service.RoomService
	Ingestion service.IngestionService
	Positions service.PositionService
}

func NewRouter(services Services, jwtSecret string, logger zerolog.Logger) http.Handler {
	// Initialize handlers
	roomHandler := handler.NewRoomHandler(services.Rooms)
	positionHandler := handler.NewPositionHandler(services.Ingestion, services.Positions)
	authMiddleware := middleware.NewAuthMiddleware(jwtSecret)
	logging := middleware.LoggingMiddleware(logger)

	mux := http.NewServeMux()

	withMiddleware := func(handler http.Handler) http.Handler {
		return middleware.CORSMiddleware(
			logging(
				authMiddleware.Authenticate(handler),
			),
		)
	}

	// method restricts a route to one HTTP method, answering CORS preflights.
	method := func(m string, fn http.HandlerFunc) http.Handler {
		return withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case m:
				fn(w, r)
			case http.MethodOptions:
				w.WriteHeader(http.StatusOK)
			default:
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			}
		}))
	}

	mux.Handle("/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
		})
	}))
	mux.Handle("/metrics", promhttp.Handler())

	// Fingerprint routes
	mux.Handle("/wifi/upload", method(http.MethodPost, positionHandler.Upload))
	mux.Handle("/room/location", method(http.MethodPost, positionHandler.Locate))

	// Room routes
	mux.Handle("/room/info", method(http.MethodGet, roomHandler.Info))
	mux.Handle("/room/list", method(http.MethodGet, roomHandler.List))
	mux.Handle("/room/new", method(http.MethodPost, roomHandler.Create))
	mux.Handle("/room/delete", method(http.MethodPost, roomHandler.Delete))
	mux.Handle("/room/positions/clear", method(http.MethodPost, roomHandler.ClearPositions))

	return mux
}
