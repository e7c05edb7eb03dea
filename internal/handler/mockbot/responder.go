package mockbot

import (
	"strings"

	"github.com/kroy92/copilot-automation-testing/internal/model/directline"
)

// Responder 根据用户输入生成机器人回复活动。
type Responder interface {
	Reply(text string) []directline.Activity
}

// ResponderFunc adapts a plain function to Responder.
type ResponderFunc func(text string) []directline.Activity

// Reply calls f.
func (f ResponderFunc) Reply(text string) []directline.Activity { return f(text) }

var botAccount = directline.ChannelAccount{ID: "mockbot", Name: "Mock Bot", Role: directline.RoleBot}

// ScriptedResponder 问候会得到带建议操作的回复，其他输入原样回显。
type ScriptedResponder struct{}

// Reply implements Responder.
func (ScriptedResponder) Reply(text string) []directline.Activity {
	typing := directline.Activity{Type: directline.ActivityTypeTyping, From: botAccount}

	normalized := strings.ToLower(strings.TrimSpace(text))
	switch {
	case isGreeting(normalized):
		return []directline.Activity{typing, botMessage("Hello! How can I help you today?", "Check my order", "Talk to an agent")}
	case normalized == "help":
		return []directline.Activity{typing, botMessage("I can greet you and repeat what you say.")}
	case normalized == "":
		return []directline.Activity{typing, botMessage("")}
	default:
		return []directline.Activity{typing, botMessage("You said: " + text)}
	}
}

func isGreeting(text string) bool {
	for _, greeting := range []string{"hello", "hi", "hey"} {
		if text == greeting || strings.HasPrefix(text, greeting+" ") || strings.HasPrefix(text, greeting+"!") {
			return true
		}
	}
	return false
}

func botMessage(text string, actions ...string) directline.Activity {
	activity := directline.Activity{
		Type:   directline.ActivityTypeMessage,
		From:   botAccount,
		Locale: "en-US",
		Text:   text,
	}
	if len(actions) > 0 {
		suggested := &directline.SuggestedActions{Actions: make([]directline.CardAction, 0, len(actions))}
		for _, title := range actions {
			suggested.Actions = append(suggested.Actions, directline.CardAction{Type: "imBack", Title: title, Value: title})
		}
		activity.SuggestedActions = suggested
	}
	return activity
}
