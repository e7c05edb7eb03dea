package directline

import "time"

// Conversation 模拟服务端保存的会话记录。
type Conversation struct {
	ID        string    `json:"conversationId"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}
