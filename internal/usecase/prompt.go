package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"routine-builder/internal/domain"
)

// systemPrompt is the fixed instruction opening every conversation.
const systemPrompt = "You are a helpful assistant specializing in beauty and personal care routines. " +
	"Build a practical routine from the products the user selected and answer follow-up questions about it."

// BuildInitialMessages derives the routine-generation request from the
// current selection: the fixed system instruction followed by one user
// message carrying the selection serialized in insertion order. Fails with
// EMPTY_SELECTION when nothing is selected; callers must not hit the gateway
// in that case.
func BuildInitialMessages(selected []domain.SelectedProduct) ([]domain.ChatMessage, error) {
	if len(selected) == 0 {
		return nil, newError(ErrorEmptySelection, "no_products_selected", nil)
	}

	serialized, err := json.Marshal(selected)
	if err != nil {
		return nil, fmt.Errorf("usecase: serialize selection: %w", err)
	}

	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: systemPrompt},
		{Role: domain.RoleUser, Content: "Generate a personalized routine using these products: " + string(serialized)},
	}, nil
}

// AppendFollowUp returns history extended with one user turn. Fails with
// EMPTY_INPUT when the text trims to empty. Pure: the input slice is not
// mutated and the caller decides whether to persist the result.
func AppendFollowUp(history []domain.ChatMessage, userText string) ([]domain.ChatMessage, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return nil, newError(ErrorEmptyInput, "empty_follow_up", nil)
	}

	out := make([]domain.ChatMessage, len(history), len(history)+1)
	copy(out, history)
	return append(out, domain.ChatMessage{Role: domain.RoleUser, Content: userText}), nil
}
