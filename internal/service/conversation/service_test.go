package conversation_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kroy92/copilot-automation-testing/internal/model/directline"
	"github.com/kroy92/copilot-automation-testing/internal/service/conversation"
)

func startConversation(t *testing.T, svc *conversation.Service) directline.Conversation {
	t.Helper()
	ctx := context.Background()

	record, err := svc.Start(ctx, svc.IssueToken(ctx))
	if err != nil {
		t.Fatalf("Start err: %v", err)
	}
	return record
}

func TestServiceStartRequiresIssuedToken(t *testing.T) {
	svc := conversation.NewService()

	if _, err := svc.Start(context.Background(), "forged"); !errors.Is(err, conversation.ErrUnknownToken) {
		t.Fatalf("expected ErrUnknownToken, got %v", err)
	}

	record := startConversation(t, svc)
	if record.ID == "" || record.Token == "" {
		t.Fatalf("conversation missing id or token: %+v", record)
	}
}

func TestServiceAuthorize(t *testing.T) {
	svc := conversation.NewService()
	ctx := context.Background()
	record := startConversation(t, svc)

	if _, err := svc.Authorize(ctx, record.ID, record.Token); err != nil {
		t.Fatalf("Authorize err: %v", err)
	}
	if _, err := svc.Authorize(ctx, record.ID, "other"); !errors.Is(err, conversation.ErrTokenMismatch) {
		t.Fatalf("expected ErrTokenMismatch, got %v", err)
	}
	if _, err := svc.Authorize(ctx, "missing", record.Token); !errors.Is(err, conversation.ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestServicePostFansOutToSubscribers(t *testing.T) {
	svc := conversation.NewService()
	ctx := context.Background()
	record := startConversation(t, svc)

	first, cancelFirst, err := svc.Subscribe(ctx, record.ID)
	if err != nil {
		t.Fatalf("Subscribe err: %v", err)
	}
	defer cancelFirst()
	second, cancelSecond, err := svc.Subscribe(ctx, record.ID)
	if err != nil {
		t.Fatalf("Subscribe err: %v", err)
	}
	defer cancelSecond()

	id, err := svc.Post(ctx, record.ID, directline.Activity{Type: directline.ActivityTypeMessage, Text: "hi"})
	if err != nil {
		t.Fatalf("Post err: %v", err)
	}
	if !strings.HasPrefix(id, record.ID+"|") {
		t.Fatalf("unexpected activity id: %s", id)
	}

	for _, ch := range []<-chan directline.ActivitySet{first, second} {
		set := <-ch
		if len(set.Activities) != 1 || set.Activities[0].Text != "hi" {
			t.Fatalf("unexpected activity set: %+v", set)
		}
		if set.Activities[0].Timestamp == nil {
			t.Fatal("expected timestamp to be assigned")
		}
		if set.Watermark != "0" {
			t.Fatalf("unexpected watermark: %s", set.Watermark)
		}
	}
}

func TestServiceSubscribeCancelIsIdempotent(t *testing.T) {
	svc := conversation.NewService()
	ctx := context.Background()
	record := startConversation(t, svc)

	ch, cancel, err := svc.Subscribe(ctx, record.ID)
	if err != nil {
		t.Fatalf("Subscribe err: %v", err)
	}
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed")
	}
	if _, err := svc.Post(ctx, record.ID, directline.Activity{Type: directline.ActivityTypeTyping}); err != nil {
		t.Fatalf("Post after cancel err: %v", err)
	}
}

func TestServiceEndClosesSubscribers(t *testing.T) {
	svc := conversation.NewService()
	ctx := context.Background()
	record := startConversation(t, svc)

	ch, cancel, err := svc.Subscribe(ctx, record.ID)
	if err != nil {
		t.Fatalf("Subscribe err: %v", err)
	}
	defer cancel()

	if err := svc.End(ctx, record.ID); err != nil {
		t.Fatalf("End err: %v", err)
	}
	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed")
	}
	if _, err := svc.Transcript(ctx, record.ID); !errors.Is(err, conversation.ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestServiceTranscript(t *testing.T) {
	svc := conversation.NewService()
	ctx := context.Background()
	record := startConversation(t, svc)

	if _, err := svc.Post(ctx, record.ID, directline.Activity{}); !errors.Is(err, conversation.ErrActivityRequired) {
		t.Fatalf("expected ErrActivityRequired, got %v", err)
	}

	for _, text := range []string{"one", "two"} {
		if _, err := svc.Post(ctx, record.ID, directline.Activity{Type: directline.ActivityTypeMessage, Text: text}); err != nil {
			t.Fatalf("Post err: %v", err)
		}
	}

	activities, err := svc.Transcript(ctx, record.ID)
	if err != nil {
		t.Fatalf("Transcript err: %v", err)
	}
	if len(activities) != 2 || activities[0].Text != "one" || activities[1].Text != "two" {
		t.Fatalf("unexpected transcript: %+v", activities)
	}
}
