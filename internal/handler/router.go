package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/zhouzirui/hypercar-hub/backend/internal/handler/car"
	"github.com/zhouzirui/hypercar-hub/backend/internal/handler/events"
	middlewarePkg "github.com/zhouzirui/hypercar-hub/backend/internal/middleware"
	carService "github.com/zhouzirui/hypercar-hub/backend/internal/service/car"
	eventService "github.com/zhouzirui/hypercar-hub/backend/internal/service/events"
	"github.com/zhouzirui/hypercar-hub/backend/pkg/utils"
)

const (
	apiName    = "HyperCar-Hub API"
	apiVersion = "1.0"
)

// Options carries router dependencies beyond the car service.
type Options struct {
	Logger         *zap.Logger
	AllowedOrigins []string
	// Hub enables the change feed endpoints when non-nil.
	Hub *eventService.Hub
}

// NewRouter wires HTTP routes to core services.
func NewRouter(carSvc *carService.Service, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.Logger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(origins))

	r.Get("/", handleIndex)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	car.New(carSvc, logger).RegisterRoutes(r)

	if opts.Hub != nil {
		events.New(opts.Hub, logger).RegisterRoutes(r)
	}

	return r
}

type indexResponse struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, indexResponse{
		Name:    apiName,
		Version: apiVersion,
		Endpoints: map[string]string{
			"GET /cars":         "List all cars",
			"GET /cars/{id}":    "Get a single car",
			"POST /cars":        "Add a new car",
			"POST /cars/bulk":   "Add several cars",
			"PUT /cars/{id}":    "Replace a car",
			"DELETE /cars/{id}": "Delete a car",
		},
	})
}
