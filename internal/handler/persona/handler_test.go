package persona

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	personaModel "github.com/mvasquez/persona-sim/internal/model/persona"
)

func setupRouter() *chi.Mux {
	store := personaModel.NewMemoryStore(personaModel.Seed())
	r := chi.NewRouter()
	New(store).RegisterRoutes(r)
	return r
}

func TestListPersonas(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/personas", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var personas []personaModel.Persona
	if err := json.NewDecoder(resp.Body).Decode(&personas); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(personas) != 3 {
		t.Fatalf("expected 3 personas, got %d", len(personas))
	}
}

func TestGetPersonaByID(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/personas/helpful-assistant", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var p personaModel.Persona
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if p.ID != "helpful-assistant" || p.SystemPrompt == "" {
		t.Fatalf("unexpected persona: %+v", p)
	}
}

func TestGetPersonaUnknownID(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/personas/not-a-real-persona", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
