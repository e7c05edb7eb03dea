package directline

// Session captures one negotiated conversation. It is handed out by value and
// never mutated after negotiation.
type Session struct {
	IdentityToken     string `json:"-"`
	ConversationID    string `json:"conversationId"`
	ConversationToken string `json:"-"`
	StreamURL         string `json:"streamUrl"`
}

// Valid reports whether every negotiated field is present.
func (s Session) Valid() bool {
	return s.IdentityToken != "" && s.ConversationID != "" && s.ConversationToken != "" && s.StreamURL != ""
}
