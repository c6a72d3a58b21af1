package car

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	carService "github.com/zhouzirui/hypercar-hub/backend/internal/service/car"
	"github.com/zhouzirui/hypercar-hub/backend/internal/storage"
	"github.com/zhouzirui/hypercar-hub/backend/pkg/utils"
)

// Handler exposes the car catalogue over REST.
type Handler struct {
	svc    *carService.Service
	logger *zap.Logger
}

// New creates a car handler.
func New(svc *carService.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the car endpoints on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/cars", h.handleList)
	r.Post("/cars", h.handleCreate)
	r.Post("/cars/bulk", h.handleBulkCreate)
	r.Get("/cars/{id}", h.handleGet)
	r.Put("/cars/{id}", h.handleUpdate)
	r.Delete("/cars/{id}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	cars, err := h.svc.List(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, cars)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, c)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload draftPayload
	if !h.decode(w, r, &payload, "request body must be a car object") {
		return
	}
	draft, err := payload.toDraft()
	if err != nil {
		utils.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := h.svc.Create(r.Context(), draft)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, created)
}

func (h *Handler) handleBulkCreate(w http.ResponseWriter, r *http.Request) {
	var payloads []draftPayload
	if !h.decode(w, r, &payloads, errNotAList.Error()) {
		return
	}
	drafts, err := toDrafts(payloads)
	if err != nil {
		utils.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := h.svc.BulkCreate(r.Context(), drafts)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, created)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload draftPayload
	if !h.decode(w, r, &payload, "request body must be a car object") {
		return
	}
	replacement, err := payload.toDraft()
	if err != nil {
		utils.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	updated, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), replacement)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	utils.RespondMessage(w, http.StatusOK, "car deleted")
}

// decode reads exactly one JSON value from the body into dst. Syntax errors
// and trailing data answer 400, values of the wrong type answer 422; shape is
// the message used when the top-level value itself has the wrong type.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}, shape string) bool {
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(dst)
	if err == nil {
		if _, err := dec.Token(); err != io.EOF {
			utils.RespondError(w, http.StatusBadRequest, "invalid request body")
			return false
		}
		return true
	}

	var typeErr *json.UnmarshalTypeError
	var fieldErr invalidFieldError
	switch {
	case errors.As(err, &fieldErr):
		utils.RespondError(w, http.StatusUnprocessableEntity, fieldErr.Error())
	case errors.As(err, &typeErr) && typeErr.Field != "":
		utils.RespondError(w, http.StatusUnprocessableEntity, "invalid value for "+typeErr.Field)
	case errors.As(err, &typeErr):
		utils.RespondError(w, http.StatusUnprocessableEntity, shape)
	default:
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
	}
	return false
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, carService.ErrNotFound):
		utils.RespondError(w, http.StatusNotFound, "car not found")
	case errors.Is(err, storage.ErrMalformedStorage):
		h.logger.Error("car storage is corrupted", zap.String("path", r.URL.Path), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "storage is corrupted")
	default:
		h.logger.Error("car storage failure", zap.String("path", r.URL.Path), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
