package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/mvasquez/persona-sim/internal/config"
	"github.com/mvasquez/persona-sim/internal/model/simulation"
)

// fallbackReply is persisted instead of failing the turn when the model
// answers with no usable content. Losing the user's input with no
// assistant counterpart costs more than a generic line.
const fallbackReply = "I'm sorry, I couldn't generate a response."

var (
	errMalformedTranscript = errors.New("transcript must start with a system message and end with a user message")
	errModelNotConfigured  = errors.New("completion model not configured")
)

// Disabled stands in when no model credentials are provided: the rest
// of the API stays up and every turn fails as a completion error.
type Disabled struct{}

// Complete always fails.
func (Disabled) Complete(context.Context, []simulation.Message) (string, error) {
	return "", errModelNotConfigured
}

// Service adapts the configured chat model to the orchestrator's
// Completer contract: one stateless call per turn, full ordered history
// in, one reply out.
type Service struct {
	cfg   config.AIConfig
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewService builds the completion chain from the model configuration.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile completion chain: %w", err)
	}

	return &Service{
		cfg:   cfg,
		chain: runnable,
	}, nil
}

// Complete sends the full transcript to the model and returns its reply.
// The call is bounded by the configured request timeout; a transport or
// model error is returned as-is, while an empty reply degrades to the
// fallback line.
func (s *Service) Complete(ctx context.Context, transcript []simulation.Message) (string, error) {
	input, err := chainInput(transcript)
	if err != nil {
		return "", err
	}

	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("invoke completion chain: %w", err)
	}

	return normalizeReply(response.Content), nil
}

// chainInput splits the transcript into the template slots: the system
// seed, the prior user/assistant exchange, and the pending user query.
func chainInput(transcript []simulation.Message) (map[string]any, error) {
	if len(transcript) < 2 || transcript[0].Role != simulation.RoleSystem {
		return nil, errMalformedTranscript
	}

	last := transcript[len(transcript)-1]
	if last.Role != simulation.RoleUser {
		return nil, errMalformedTranscript
	}

	history := make([]*schema.Message, 0, len(transcript)-2)
	for _, msg := range transcript[1 : len(transcript)-1] {
		switch msg.Role {
		case simulation.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case simulation.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return map[string]any{
		"system":  transcript[0].Content,
		"history": history,
		"query":   last.Content,
	}, nil
}

func normalizeReply(content string) string {
	if strings.TrimSpace(content) == "" {
		log.Printf("[ai] completion returned no usable content, substituting fallback reply")
		return fallbackReply
	}
	return content
}
