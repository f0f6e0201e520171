package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/mvasquez/persona-sim/internal/model/simulation"
)

func TestChainInputSplitsTranscript(t *testing.T) {
	transcript := []simulation.Message{
		{Role: simulation.RoleSystem, Content: "be helpful"},
		{Role: simulation.RoleUser, Content: "first question"},
		{Role: simulation.RoleAssistant, Content: "first answer"},
		{Role: simulation.RoleUser, Content: "second question"},
	}

	input, err := chainInput(transcript)
	if err != nil {
		t.Fatalf("chainInput err: %v", err)
	}

	if input["system"] != "be helpful" {
		t.Fatalf("unexpected system slot: %v", input["system"])
	}
	if input["query"] != "second question" {
		t.Fatalf("unexpected query slot: %v", input["query"])
	}

	history, ok := input["history"].([]*schema.Message)
	if !ok {
		t.Fatalf("history slot has wrong type: %T", input["history"])
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history messages, got %d", len(history))
	}
	if history[0].Role != schema.User || history[0].Content != "first question" {
		t.Fatalf("unexpected first history entry: %+v", history[0])
	}
	if history[1].Role != schema.Assistant || history[1].Content != "first answer" {
		t.Fatalf("unexpected second history entry: %+v", history[1])
	}
}

func TestChainInputFirstTurnHasEmptyHistory(t *testing.T) {
	transcript := []simulation.Message{
		{Role: simulation.RoleSystem, Content: "be helpful"},
		{Role: simulation.RoleUser, Content: "hello"},
	}

	input, err := chainInput(transcript)
	if err != nil {
		t.Fatalf("chainInput err: %v", err)
	}

	history := input["history"].([]*schema.Message)
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(history))
	}
}

func TestChainInputRejectsMalformedTranscripts(t *testing.T) {
	cases := [][]simulation.Message{
		nil,
		{{Role: simulation.RoleSystem, Content: "be helpful"}},
		{
			{Role: simulation.RoleUser, Content: "no system seed"},
			{Role: simulation.RoleUser, Content: "hello"},
		},
		{
			{Role: simulation.RoleSystem, Content: "be helpful"},
			{Role: simulation.RoleUser, Content: "hello"},
			{Role: simulation.RoleAssistant, Content: "ends on assistant"},
		},
	}

	for i, transcript := range cases {
		if _, err := chainInput(transcript); !errors.Is(err, errMalformedTranscript) {
			t.Fatalf("case %d: expected errMalformedTranscript, got %v", i, err)
		}
	}
}

func TestDisabledCompleterFailsEveryTurn(t *testing.T) {
	transcript := []simulation.Message{
		{Role: simulation.RoleSystem, Content: "be helpful"},
		{Role: simulation.RoleUser, Content: "hello"},
	}

	if _, err := (Disabled{}).Complete(context.Background(), transcript); !errors.Is(err, errModelNotConfigured) {
		t.Fatalf("expected errModelNotConfigured, got %v", err)
	}
}

func TestNormalizeReplySubstitutesFallback(t *testing.T) {
	if got := normalizeReply("  \n\t "); got != fallbackReply {
		t.Fatalf("expected fallback for blank content, got %q", got)
	}
	if got := normalizeReply("a real answer"); got != "a real answer" {
		t.Fatalf("expected content passthrough, got %q", got)
	}
}
