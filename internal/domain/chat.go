package domain

// Message roles understood by the gateway and the provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is the provider-agnostic chat message shape shared by the
// client session, the gateway and the provider integration.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
