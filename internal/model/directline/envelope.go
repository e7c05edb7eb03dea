package directline

// TokenResponse is the bootstrap endpoint payload.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in,omitempty"`
}

// ConversationResponse is returned when a conversation is started.
type ConversationResponse struct {
	ConversationID string `json:"conversationId"`
	Token          string `json:"token"`
	StreamURL      string `json:"streamUrl"`
	ExpiresIn      int    `json:"expires_in,omitempty"`
}

// OutboundMessage is the envelope posted for a user turn.
type OutboundMessage struct {
	Locale string         `json:"locale"`
	Type   string         `json:"type"`
	From   ChannelAccount `json:"from"`
	Text   string         `json:"text"`
}

// ResourceResponse acknowledges a posted activity.
type ResourceResponse struct {
	ID string `json:"id"`
}
