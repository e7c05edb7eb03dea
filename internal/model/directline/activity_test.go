package directline

import (
	"reflect"
	"testing"
)

func TestActivityUtterancesOrder(t *testing.T) {
	activity := Activity{
		Type: ActivityTypeMessage,
		From: ChannelAccount{Role: RoleBot},
		Text: "A",
		SuggestedActions: &SuggestedActions{Actions: []CardAction{
			{Title: "B"},
			{Title: "C"},
		}},
	}

	got := activity.Utterances()
	want := []string{"A", "B", "C"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Utterances() = %v, want %v", got, want)
	}
}

func TestActivitySetBotUtterances(t *testing.T) {
	cases := []struct {
		name string
		set  ActivitySet
		want []string
	}{
		{
			name: "user echo only",
			set: ActivitySet{Activities: []Activity{
				{Type: ActivityTypeMessage, From: ChannelAccount{Role: RoleUser}, Text: "Hello"},
			}},
			want: nil,
		},
		{
			name: "typing is ignored",
			set: ActivitySet{Activities: []Activity{
				{Type: ActivityTypeTyping, From: ChannelAccount{Role: RoleBot}},
			}},
			want: nil,
		},
		{
			name: "bot message without text keeps an empty entry",
			set: ActivitySet{Activities: []Activity{
				{Type: ActivityTypeMessage, From: ChannelAccount{Role: RoleBot}},
			}},
			want: []string{""},
		},
		{
			name: "multiple bot messages keep document order",
			set: ActivitySet{Activities: []Activity{
				{Type: ActivityTypeMessage, From: ChannelAccount{Role: RoleBot}, Text: "first"},
				{Type: ActivityTypeTyping, From: ChannelAccount{Role: RoleBot}},
				{Type: ActivityTypeMessage, From: ChannelAccount{Role: RoleBot}, Text: "second",
					SuggestedActions: &SuggestedActions{Actions: []CardAction{{Title: "yes"}}}},
			}},
			want: []string{"first", "second", "yes"},
		},
	}

	for _, tc := range cases {
		if got := tc.set.BotUtterances(); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s: BotUtterances() = %#v, want %#v", tc.name, got, tc.want)
		}
	}
}
