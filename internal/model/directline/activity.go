package directline

import "time"

const (
	// ActivityTypeMessage 普通文本消息。
	ActivityTypeMessage = "message"
	// ActivityTypeTyping 输入中提示。
	ActivityTypeTyping = "typing"
	// ActivityTypeEvent 系统事件。
	ActivityTypeEvent = "event"

	RoleBot  = "bot"
	RoleUser = "user"
)

// ChannelAccount identifies the sender of an activity.
type ChannelAccount struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

// CardAction is a quick-reply option offered by the bot.
type CardAction struct {
	Type  string `json:"type,omitempty"`
	Title string `json:"title"`
	Value any    `json:"value,omitempty"`
}

// SuggestedActions groups the quick replies attached to a message.
type SuggestedActions struct {
	Actions []CardAction `json:"actions"`
}

// Activity is one event record inside an activity set.
type Activity struct {
	ID               string            `json:"id,omitempty"`
	Type             string            `json:"type"`
	Timestamp        *time.Time        `json:"timestamp,omitempty"`
	Locale           string            `json:"locale,omitempty"`
	From             ChannelAccount    `json:"from"`
	Text             string            `json:"text,omitempty"`
	SuggestedActions *SuggestedActions `json:"suggestedActions,omitempty"`
}

// IsBotMessage reports whether the activity is a message authored by the bot.
func (a Activity) IsBotMessage() bool {
	return a.Type == ActivityTypeMessage && a.From.Role == RoleBot
}

// Utterances 返回该活动对测试可见的文本：正文在前，建议操作标题按顺序随后。
// 非机器人消息返回 nil。
func (a Activity) Utterances() []string {
	if !a.IsBotMessage() {
		return nil
	}

	out := []string{a.Text}
	if a.SuggestedActions != nil {
		for _, action := range a.SuggestedActions.Actions {
			out = append(out, action.Title)
		}
	}
	return out
}

// ActivitySet is the document delivered over the stream.
type ActivitySet struct {
	Activities []Activity `json:"activities"`
	Watermark  string     `json:"watermark,omitempty"`
}

// BotUtterances flattens every bot message of the set, preserving document order.
func (s ActivitySet) BotUtterances() []string {
	var out []string
	for _, activity := range s.Activities {
		out = append(out, activity.Utterances()...)
	}
	return out
}
