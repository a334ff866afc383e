package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"routine-builder/internal/domain"
	"routine-builder/internal/integrations/gateway"
	"routine-builder/internal/selection"
)

// Full client-side round trip against a stub gateway: the generated routine
// text reaches the caller and the history ends with the assistant turn.
func TestRoundTrip_StubGateway(t *testing.T) {
	var gotMessages []domain.ChatMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Messages []domain.ChatMessage `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		gotMessages = payload.Messages
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hi"}}]}`))
	}))
	defer srv.Close()

	gw, err := gateway.NewClient(srv.URL, gateway.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	store := selection.NewStore()
	store.Toggle("p1", "Day Cream")
	svc, err := NewRoutineService(gw, store)
	require.NoError(t, err)

	routine, err := svc.GenerateRoutine(context.Background())
	require.NoError(t, err)
	require.Equal(t, "hi", routine)

	require.Len(t, gotMessages, 2)
	require.Equal(t, domain.RoleSystem, gotMessages[0].Role)
	require.Equal(t, domain.RoleUser, gotMessages[1].Role)

	history := svc.History()
	require.Equal(t, domain.ChatMessage{Role: domain.RoleAssistant, Content: "hi"}, history[len(history)-1])
}

// A simulated upstream 500 surfaces as a typed error and leaves the history
// with only the already-sent user turn.
func TestRoundTrip_UpstreamFailureIsIsolated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"OpenAI API error: Internal Server Error"}`))
	}))
	defer srv.Close()

	gw, err := gateway.NewClient(srv.URL, gateway.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	store := selection.NewStore()
	store.Toggle("p1", "Day Cream")
	svc, err := NewRoutineService(gw, store)
	require.NoError(t, err)

	_, err = svc.GenerateRoutine(context.Background())
	requireCode(t, err, ErrorUpstream)
	require.Empty(t, svc.History())

	_, err = svc.SendFollowUp(context.Background(), "still there?")
	requireCode(t, err, ErrorUpstream)
	require.Equal(t, []domain.ChatMessage{{Role: domain.RoleUser, Content: "still there?"}}, svc.History())
}
