package simulation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mvasquez/persona-sim/internal/lock"
	"github.com/mvasquez/persona-sim/internal/model/persona"
	"github.com/mvasquez/persona-sim/internal/model/simulation"
	"github.com/mvasquez/persona-sim/internal/store"
)

var (
	ErrSimulationIDRequired = errors.New("simulation id is required")
	ErrMessageRequired      = errors.New("user message is required")
	ErrPersonaNotFound      = errors.New("persona not found")
	ErrSimulationNotFound   = errors.New("simulation not found")
	ErrCompletionFailed     = errors.New("completion failed")
)

// Completer produces one assistant reply for an ordered transcript. The
// external service is stateless per call, so the whole history travels
// on every turn.
type Completer interface {
	Complete(ctx context.Context, transcript []simulation.Message) (string, error)
}

// Service owns the simulation state machine: it seeds sessions from the
// persona catalog, serializes turns per simulation id, and keeps the
// stored transcript consistent with what the completion service saw.
type Service struct {
	personas  persona.Store
	sessions  store.Store
	completer Completer
	ttl       time.Duration
	locks     *lock.Keyed
}

// NewService wires the orchestrator's collaborators. A non-positive ttl
// falls back to the store default.
func NewService(personas persona.Store, sessions store.Store, completer Completer, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = store.DefaultTTL
	}
	return &Service{
		personas:  personas,
		sessions:  sessions,
		completer: completer,
		ttl:       ttl,
		locks:     lock.NewKeyed(),
	}
}

// Start creates a simulation bound to a persona and persists it with
// the default expiry. Calling Start again with the same id overwrites
// the prior conversation; restarting is a deliberate reset, not an
// error.
func (s *Service) Start(ctx context.Context, simulationID, personaID string) (simulation.Session, error) {
	if simulationID == "" {
		return simulation.Session{}, ErrSimulationIDRequired
	}

	p, ok := s.personas.FindByID(personaID)
	if !ok {
		return simulation.Session{}, fmt.Errorf("%w: %s", ErrPersonaNotFound, personaID)
	}

	release := s.locks.Acquire(simulationID)
	defer release()

	session := simulation.New(simulationID, personaID, p.SystemPrompt)
	if err := s.sessions.Put(ctx, simulationID, session, s.ttl); err != nil {
		return simulation.Session{}, fmt.Errorf("persist simulation %s: %w", simulationID, err)
	}

	log.Printf("[simulation] started id=%s persona=%s", simulationID, personaID)
	return session, nil
}

// ProcessTurn runs one read-modify-write cycle: load the session,
// append the user message, obtain the assistant reply, then persist the
// pair together with a refreshed expiry. The per-id lock spans the whole
// cycle so concurrent turns on the same simulation serialize instead of
// clobbering each other's appends. Nothing is written until the reply
// exists, so a failed turn leaves the stored transcript exactly as the
// previous turn left it.
func (s *Service) ProcessTurn(ctx context.Context, simulationID, userMessage string) (string, error) {
	if simulationID == "" {
		return "", ErrSimulationIDRequired
	}
	if userMessage == "" {
		return "", ErrMessageRequired
	}

	release := s.locks.Acquire(simulationID)
	defer release()

	session, err := s.sessions.Get(ctx, simulationID)
	if errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("%w: %s", ErrSimulationNotFound, simulationID)
	}
	if err != nil {
		return "", fmt.Errorf("load simulation %s: %w", simulationID, err)
	}

	session.Append(simulation.RoleUser, userMessage)

	reply, err := s.completer.Complete(ctx, session.Messages)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}

	session.Append(simulation.RoleAssistant, reply)

	if err := s.sessions.Put(ctx, simulationID, session, s.ttl); err != nil {
		return "", fmt.Errorf("persist simulation %s: %w", simulationID, err)
	}

	log.Printf("[simulation] turn completed id=%s messages=%d", simulationID, len(session.Messages))
	return reply, nil
}

// LoadState returns the current session without side effects. Expired
// and never-started simulations are indistinguishable.
func (s *Service) LoadState(ctx context.Context, simulationID string) (simulation.Session, error) {
	if simulationID == "" {
		return simulation.Session{}, ErrSimulationIDRequired
	}

	session, err := s.sessions.Get(ctx, simulationID)
	if errors.Is(err, store.ErrNotFound) {
		return simulation.Session{}, fmt.Errorf("%w: %s", ErrSimulationNotFound, simulationID)
	}
	if err != nil {
		return simulation.Session{}, fmt.Errorf("load simulation %s: %w", simulationID, err)
	}
	return session, nil
}
