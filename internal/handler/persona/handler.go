package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mvasquez/persona-sim/internal/model/persona"
	"github.com/mvasquez/persona-sim/pkg/utils"
)

// Handler serves the read-only persona catalog.
type Handler struct {
	personas persona.Store
}

// New creates the persona handler.
func New(personas persona.Store) *Handler {
	return &Handler{personas: personas}
}

// RegisterRoutes mounts the persona endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
	r.Get("/personas/{personaID}", h.handleGetPersona)
}

func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.personas.List())
}

func (h *Handler) handleGetPersona(w http.ResponseWriter, r *http.Request) {
	personaID := chi.URLParam(r, "personaID")

	p, ok := h.personas.FindByID(personaID)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "persona not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, p)
}
