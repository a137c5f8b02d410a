package chat

import (
	"context"
	"fmt"
	"time"

	"taskchat-backend/internal/conversations"
)

// ConversationStore is the persistence boundary the orchestrator needs.
// conversations.SQLStore implements it.
type ConversationStore interface {
	GetOrCreate(ctx context.Context, userID int, conversationID string) (conversations.Conversation, error)
	AppendMessage(ctx context.Context, conversationID string, userID int, role, content string) (conversations.Message, error)
	History(ctx context.Context, conversationID string, userID int) ([]conversations.Message, error)
}

// Response is the envelope returned for every chat request, including
// failed ones.
type Response struct {
	ConversationID string     `json:"conversation_id"`
	Response       string     `json:"response"`
	ToolCalls      []ToolCall `json:"tool_calls"`
	Timestamp      string     `json:"timestamp"`
}

// Service sequences one chat request: conversation lookup, message
// persistence, intent resolution, reply persistence. It is stateless
// across requests; everything it knows comes from the store.
type Service struct {
	convs    ConversationStore
	resolver Resolver
}

func NewService(convs ConversationStore, resolver Resolver) *Service {
	return &Service{convs: convs, resolver: resolver}
}

// Process runs the five-step chat sequence. Any failure along the way is
// converted into an apology envelope; the caller never sees an error.
func (s *Service) Process(ctx context.Context, userID int, message, conversationID string) Response {
	conv, err := s.convs.GetOrCreate(ctx, userID, conversationID)
	if err != nil {
		return s.errorResponse(conversationID, err)
	}

	if _, err := s.convs.AppendMessage(ctx, conv.ID, userID, conversations.RoleUser, message); err != nil {
		return s.errorResponse(conversationID, err)
	}

	history, err := s.convs.History(ctx, conv.ID, userID)
	if err != nil {
		return s.errorResponse(conversationID, err)
	}
	// The current message travels as its own argument, not as history.
	if n := len(history); n > 0 {
		history = history[:n-1]
	}

	reply := s.resolver.Resolve(ctx, userID, message, history)

	if _, err := s.convs.AppendMessage(ctx, conv.ID, userID, conversations.RoleAssistant, reply.Response); err != nil {
		return s.errorResponse(conversationID, err)
	}

	toolCalls := reply.ToolCalls
	if toolCalls == nil {
		toolCalls = []ToolCall{}
	}

	return Response{
		ConversationID: conv.ID,
		Response:       reply.Response,
		ToolCalls:      toolCalls,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}
}

func (s *Service) errorResponse(conversationID string, err error) Response {
	return Response{
		ConversationID: conversationID,
		Response:       fmt.Sprintf("I'm sorry, I encountered an error: %v", err),
		ToolCalls:      []ToolCall{},
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}
}
