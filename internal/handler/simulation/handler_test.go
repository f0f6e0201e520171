package simulation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mvasquez/persona-sim/internal/model/persona"
	simmodel "github.com/mvasquez/persona-sim/internal/model/simulation"
	simservice "github.com/mvasquez/persona-sim/internal/service/simulation"
	"github.com/mvasquez/persona-sim/internal/store"
)

type echoCompleter struct{}

func (echoCompleter) Complete(_ context.Context, transcript []simmodel.Message) (string, error) {
	return fmt.Sprintf("reply to: %s", transcript[len(transcript)-1].Content), nil
}

type failingCompleter struct{}

func (failingCompleter) Complete(context.Context, []simmodel.Message) (string, error) {
	return "", fmt.Errorf("upstream unavailable")
}

func newSimService(completer simservice.Completer) *simservice.Service {
	personas := persona.NewMemoryStore(persona.Seed())
	return simservice.NewService(personas, store.NewMemoryStore(), completer, store.DefaultTTL)
}

func setupRouter(completer simservice.Completer) (*chi.Mux, *simservice.Service) {
	simSvc := newSimService(completer)

	r := chi.NewRouter()
	New(simSvc).RegisterRoutes(r)
	return r, simSvc
}

func postJSON(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestStartValidPersona(t *testing.T) {
	r, _ := setupRouter(echoCompleter{})

	resp := postJSON(t, r, "/simulation/start", map[string]string{
		"simulationId": "s1",
		"personaId":    "helpful-assistant",
	})

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	var session simmodel.Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if session.ID != "s1" || len(session.Messages) != 1 {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestStartGeneratesIDWhenOmitted(t *testing.T) {
	r, _ := setupRouter(echoCompleter{})

	resp := postJSON(t, r, "/simulation/start", map[string]string{
		"personaId": "helpful-assistant",
	})

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	var session simmodel.Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if session.ID == "" {
		t.Fatal("expected a generated simulation id")
	}
}

func TestStartUnknownPersona(t *testing.T) {
	r, _ := setupRouter(echoCompleter{})

	resp := postJSON(t, r, "/simulation/start", map[string]string{
		"simulationId": "s2",
		"personaId":    "not-a-real-persona",
	})

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestStartMissingPersonaID(t *testing.T) {
	r, _ := setupRouter(echoCompleter{})

	resp := postJSON(t, r, "/simulation/start", map[string]string{})

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestTurnReturnsAssistantReply(t *testing.T) {
	r, _ := setupRouter(echoCompleter{})

	if resp := postJSON(t, r, "/simulation/start", map[string]string{
		"simulationId": "s1",
		"personaId":    "helpful-assistant",
	}); resp.Code != http.StatusCreated {
		t.Fatalf("start failed: %d", resp.Code)
	}

	resp := postJSON(t, r, "/simulation/turn", map[string]string{
		"simulationId": "s1",
		"message":      "Hello, can you help me with my resume?",
	})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["response"] != "reply to: Hello, can you help me with my resume?" {
		t.Fatalf("unexpected reply: %q", body["response"])
	}
}

func TestTurnUnknownSimulation(t *testing.T) {
	r, _ := setupRouter(echoCompleter{})

	resp := postJSON(t, r, "/simulation/turn", map[string]string{
		"simulationId": "unknown-session",
		"message":      "hi",
	})

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestTurnCompletionFailure(t *testing.T) {
	r, _ := setupRouter(failingCompleter{})

	if resp := postJSON(t, r, "/simulation/start", map[string]string{
		"simulationId": "s1",
		"personaId":    "helpful-assistant",
	}); resp.Code != http.StatusCreated {
		t.Fatalf("start failed: %d", resp.Code)
	}

	resp := postJSON(t, r, "/simulation/turn", map[string]string{
		"simulationId": "s1",
		"message":      "hello",
	})

	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
}

func TestGetStateAfterTurn(t *testing.T) {
	r, _ := setupRouter(echoCompleter{})

	postJSON(t, r, "/simulation/start", map[string]string{
		"simulationId": "s1",
		"personaId":    "helpful-assistant",
	})
	postJSON(t, r, "/simulation/turn", map[string]string{
		"simulationId": "s1",
		"message":      "hello",
	})

	req := httptest.NewRequest(http.MethodGet, "/simulation/s1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var session simmodel.Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(session.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(session.Messages))
	}
}

func TestGetStateUnknownSimulation(t *testing.T) {
	r, _ := setupRouter(echoCompleter{})

	req := httptest.NewRequest(http.MethodGet, "/simulation/missing", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
