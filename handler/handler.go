// Package handler implements the routine gateway: a stateless mediator that
// validates a message list, forwards it to the completion provider with the
// server-held credential, and relays the provider document unchanged. Every
// response on every path carries the allow-all-origins CORS header.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
)

const (
	msgMethodNotAllowed = "Method not allowed. Only POST is supported."
	msgInvalidMessages  = "'messages' must be a valid array."
	msgEmptyMessages    = "'messages' array cannot be empty."
	msgInternalError    = "Internal server error. Please try again later."

	correlationHeader = "X-Correlation-Id"
)

// Completer forwards a raw messages array to the provider and returns the
// completion document verbatim.
type Completer interface {
	Complete(ctx context.Context, model string, messages json.RawMessage) (json.RawMessage, error)
}

// httpStatusCoder is satisfied by provider errors that carry the upstream
// HTTP status.
type httpStatusCoder interface {
	HTTPStatusCode() int
}

// gatewayRequest is the inbound wire payload. Messages stays raw so the
// validated array reaches the provider byte-for-byte.
type gatewayRequest struct {
	Messages json.RawMessage `json:"messages"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Handler struct {
	llm   Completer
	model string
}

func NewHandler(llm Completer, model string) (*Handler, error) {
	if llm == nil {
		return nil, errors.New("handler: completer must not be nil")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("handler: model must not be empty")
	}
	return &Handler{llm: llm, model: model}, nil
}

// Handle processes one proxy event. It holds no state across invocations;
// concurrent requests share nothing.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse, _ error) {
	corrID := correlationID(req.Headers)
	log := slog.With("correlationId", corrID)

	// Normalize anything unexpected to the generic internal error; stack
	// traces and raw failures stay server-side.
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic during request processing", "panic", r)
			resp = jsonResponse(http.StatusInternalServerError, errorResponse{Error: msgInternalError}, corrID)
		}
	}()

	if req.HTTPMethod == http.MethodOptions {
		return preflightResponse(), nil
	}

	if req.HTTPMethod != http.MethodPost {
		log.Warn("rejected method", "method", req.HTTPMethod)
		return jsonResponse(http.StatusMethodNotAllowed, errorResponse{Error: msgMethodNotAllowed}, corrID), nil
	}

	// Fail closed on syntactically invalid input, matching the deployed
	// behavior. A well-formed document of the wrong shape is a validation
	// failure, not an internal one.
	if !json.Valid([]byte(req.Body)) {
		log.Error("failed to parse request body")
		return jsonResponse(http.StatusInternalServerError, errorResponse{Error: msgInternalError}, corrID), nil
	}

	// Non-object documents simply carry no messages field; validation
	// rejects them below.
	var payload gatewayRequest
	_ = json.Unmarshal([]byte(req.Body), &payload)

	messages, msg := validateMessages(payload.Messages)
	if msg != "" {
		log.Warn("rejected payload", "reason", msg)
		return jsonResponse(http.StatusBadRequest, errorResponse{Error: msg}, corrID), nil
	}

	raw, err := h.llm.Complete(ctx, h.model, messages)
	if err != nil {
		return h.upstreamFailureResponse(log, err, corrID), nil
	}

	log.Info("relayed completion", "bytes", len(raw))
	return rawJSONResponse(http.StatusOK, raw, corrID), nil
}

// validateMessages checks that the field is a non-empty JSON array and
// returns it untouched. The second return value is the client-facing error
// sentence, empty on success.
func validateMessages(raw json.RawMessage) (json.RawMessage, string) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, msgInvalidMessages
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, msgInvalidMessages
	}
	if len(elems) == 0 {
		return nil, msgEmptyMessages
	}
	return raw, ""
}

func (h *Handler) upstreamFailureResponse(log *slog.Logger, err error, corrID string) events.APIGatewayProxyResponse {
	var statusErr httpStatusCoder
	if errors.As(err, &statusErr) {
		status := statusErr.HTTPStatusCode()
		reason := http.StatusText(status)
		if reason == "" {
			reason = "upstream failure"
		}
		// The raw upstream body stays in the error for server-side logs only.
		log.Error("provider returned error status", "status", status, "err", err)
		return jsonResponse(status, errorResponse{Error: "OpenAI API error: " + reason}, corrID)
	}

	log.Error("provider request failed", "err", err)
	return jsonResponse(http.StatusBadGateway, errorResponse{Error: "OpenAI API error: upstream request failed"}, corrID)
}

func preflightResponse() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusNoContent,
		Headers: map[string]string{
			"Access-Control-Allow-Origin":  "*",
			"Access-Control-Allow-Methods": "POST, OPTIONS",
			"Access-Control-Allow-Headers": "Content-Type",
		},
	}
}

func jsonResponse(status int, body errorResponse, corrID string) events.APIGatewayProxyResponse {
	raw, err := json.Marshal(body)
	if err != nil {
		raw = []byte(`{"error":"` + msgInternalError + `"}`)
	}
	return rawJSONResponse(status, raw, corrID)
}

func rawJSONResponse(status int, body []byte, corrID string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Access-Control-Allow-Origin": "*",
			"Content-Type":                "application/json",
			correlationHeader:             corrID,
		},
		Body: string(body),
	}
}

// correlationID echoes the caller's correlation header, case-insensitively,
// or mints a fresh one.
func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, correlationHeader) && v != "" {
			return v
		}
	}
	return uuid.NewString()
}
