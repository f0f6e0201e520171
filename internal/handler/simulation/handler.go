package simulation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	simservice "github.com/mvasquez/persona-sim/internal/service/simulation"
	"github.com/mvasquez/persona-sim/pkg/utils"
)

// Handler exposes the simulation orchestrator over HTTP.
type Handler struct {
	simSvc *simservice.Service
}

// New creates the simulation handler.
func New(simSvc *simservice.Service) *Handler {
	return &Handler{simSvc: simSvc}
}

// RegisterRoutes mounts the simulation endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/simulation", func(r chi.Router) {
		r.Post("/start", h.handleStart)
		r.Post("/turn", h.handleTurn)
		r.Get("/{simulationID}", h.handleGetState)
	})
}

// handleStart creates a simulation bound to a persona. The client may
// supply its own simulation id; otherwise one is generated.
func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SimulationID string `json:"simulationId"`
		PersonaID    string `json:"personaId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.PersonaID == "" {
		utils.RespondError(w, http.StatusBadRequest, "personaId is required")
		return
	}

	if payload.SimulationID == "" {
		payload.SimulationID = uuid.NewString()
	}

	session, err := h.simSvc.Start(r.Context(), payload.SimulationID, payload.PersonaID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session)
}

// handleTurn runs one conversation turn and returns the assistant text.
func (h *Handler) handleTurn(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SimulationID string `json:"simulationId"`
		Message      string `json:"message"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.simSvc.ProcessTurn(r.Context(), payload.SimulationID, payload.Message)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"response": reply})
}

// handleGetState returns the stored session for inspection.
func (h *Handler) handleGetState(w http.ResponseWriter, r *http.Request) {
	simulationID := chi.URLParam(r, "simulationID")

	session, err := h.simSvc.LoadState(r.Context(), simulationID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, session)
}

// respondServiceError maps orchestrator errors onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, simservice.ErrSimulationIDRequired),
		errors.Is(err, simservice.ErrMessageRequired),
		errors.Is(err, simservice.ErrPersonaNotFound):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, simservice.ErrSimulationNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, simservice.ErrCompletionFailed):
		utils.RespondError(w, http.StatusBadGateway, "completion service unavailable")
	default:
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
