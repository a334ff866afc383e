package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"routine-builder/internal/domain"
	"routine-builder/internal/integrations/gateway"
	"routine-builder/internal/selection"
)

// GatewayClient posts a message list to the gateway and returns the
// assistant's extracted reply text.
type GatewayClient interface {
	Complete(ctx context.Context, messages []domain.ChatMessage) (string, error)
}

// RoutineService owns one session's conversation history and selection set.
// History mutation is linearized: a second generate/follow-up while one is
// outstanding fails with REQUEST_IN_FLIGHT instead of interleaving turns.
type RoutineService struct {
	gateway   GatewayClient
	store     *selection.Store
	sessionID string

	mu       sync.Mutex
	inFlight bool
	history  []domain.ChatMessage
}

func NewRoutineService(gw GatewayClient, store *selection.Store) (*RoutineService, error) {
	if gw == nil {
		return nil, errors.New("usecase: gateway client must not be nil")
	}
	if store == nil {
		return nil, errors.New("usecase: selection store must not be nil")
	}
	return &RoutineService{
		gateway:   gw,
		store:     store,
		sessionID: newUUID(),
	}, nil
}

// GenerateRoutine builds the initial two-message request from the current
// selection and starts the conversation with the assistant's reply. On any
// failure the history is left exactly as it was.
func (s *RoutineService) GenerateRoutine(ctx context.Context) (string, error) {
	messages, err := BuildInitialMessages(s.store.Selected())
	if err != nil {
		return "", err
	}

	if err := s.begin(); err != nil {
		return "", err
	}
	defer s.end()

	reply, err := s.gateway.Complete(ctx, messages)
	if err != nil {
		return "", classifyGatewayError(err)
	}

	s.mu.Lock()
	s.history = append(messages, domain.ChatMessage{Role: domain.RoleAssistant, Content: reply})
	s.mu.Unlock()
	return reply, nil
}

// SendFollowUp records the user's turn, sends the full history to the
// gateway and appends the assistant's reply. When the round trip fails the
// user's own turn stays recorded; no assistant turn is appended.
func (s *RoutineService) SendFollowUp(ctx context.Context, userText string) (string, error) {
	if err := s.begin(); err != nil {
		return "", err
	}
	defer s.end()

	s.mu.Lock()
	extended, err := AppendFollowUp(s.history, userText)
	if err != nil {
		s.mu.Unlock()
		return "", err
	}
	s.history = extended
	s.mu.Unlock()

	reply, err := s.gateway.Complete(ctx, extended)
	if err != nil {
		return "", classifyGatewayError(err)
	}

	s.mu.Lock()
	s.history = append(s.history, domain.ChatMessage{Role: domain.RoleAssistant, Content: reply})
	s.mu.Unlock()
	return reply, nil
}

// History returns a copy of the conversation so far.
func (s *RoutineService) History() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChatMessage, len(s.history))
	copy(out, s.history)
	return out
}

// Selection exposes the session's selection store.
func (s *RoutineService) Selection() *selection.Store {
	return s.store
}

func (s *RoutineService) SessionID() string {
	return s.sessionID
}

func (s *RoutineService) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return newError(ErrorRequestInFlight, "request_outstanding", nil)
	}
	s.inFlight = true
	return nil
}

func (s *RoutineService) end() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

func classifyGatewayError(err error) error {
	if errors.Is(err, gateway.ErrUnexpectedResponseShape) {
		return newError(ErrorUnexpectedResponse, "missing_choices_message", err)
	}
	var statusErr *gateway.HTTPStatusError
	if errors.As(err, &statusErr) {
		return newError(ErrorUpstream, fmt.Sprintf("gateway_status_%d", statusErr.StatusCode), err)
	}
	return newError(ErrorNetworkFailure, "gateway_unreachable", err)
}

var newUUID = func() string {
	return uuid.NewString()
}
