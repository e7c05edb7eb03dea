package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kroy92/copilot-automation-testing/internal/model/directline"
)

var (
	ErrUnknownToken         = errors.New("token is not recognised")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrTokenMismatch        = errors.New("token does not belong to conversation")
	ErrActivityRequired     = errors.New("activity type is required")
)

const subscriberBacklog = 32

type conversationState struct {
	record      directline.Conversation
	activities  []directline.Activity
	subscribers map[int]chan directline.ActivitySet
	nextSubID   int
}

// Service 内存中的 Direct Line 会话存储，供模拟机器人使用。
type Service struct {
	mu            sync.RWMutex
	identities    map[string]time.Time
	conversations map[string]*conversationState
	now           func() time.Time
}

// NewService bootstraps an empty store.
func NewService() *Service {
	return &Service{
		identities:    make(map[string]time.Time),
		conversations: make(map[string]*conversationState),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// IssueToken 颁发一个引导令牌，用于开启会话。
func (s *Service) IssueToken(_ context.Context) string {
	token := uuid.NewString()

	s.mu.Lock()
	s.identities[token] = s.now()
	s.mu.Unlock()

	return token
}

// Start opens a conversation for a previously issued identity token.
func (s *Service) Start(_ context.Context, identityToken string) (directline.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.identities[identityToken]; !ok {
		return directline.Conversation{}, ErrUnknownToken
	}

	record := directline.Conversation{
		ID:        uuid.NewString(),
		Token:     uuid.NewString(),
		CreatedAt: s.now(),
	}
	s.conversations[record.ID] = &conversationState{
		record:      record,
		activities:  make([]directline.Activity, 0, 16),
		subscribers: make(map[int]chan directline.ActivitySet),
	}
	return record, nil
}

// Authorize 校验会话令牌。
func (s *Service) Authorize(_ context.Context, conversationID, token string) (directline.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.conversations[conversationID]
	if !ok {
		return directline.Conversation{}, ErrConversationNotFound
	}
	if state.record.Token != token {
		return directline.Conversation{}, ErrTokenMismatch
	}
	return state.record, nil
}

// Post appends an activity and fans it out to every stream subscriber.
// The assigned activity id is returned.
func (s *Service) Post(_ context.Context, conversationID string, activity directline.Activity) (string, error) {
	if activity.Type == "" {
		return "", ErrActivityRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.conversations[conversationID]
	if !ok {
		return "", ErrConversationNotFound
	}

	seq := len(state.activities)
	activity.ID = fmt.Sprintf("%s|%07d", conversationID, seq)
	if activity.Timestamp == nil {
		ts := s.now()
		activity.Timestamp = &ts
	}
	state.activities = append(state.activities, activity)

	set := directline.ActivitySet{
		Activities: []directline.Activity{activity},
		Watermark:  strconv.Itoa(seq),
	}
	for id, ch := range state.subscribers {
		select {
		case ch <- set:
		default:
			log.Printf("[conversation] subscriber %d of %s is lagging, dropping activity %s", id, conversationID, activity.ID)
		}
	}
	return activity.ID, nil
}

// Subscribe 订阅会话中后续发布的活动。调用返回的 cancel 释放订阅。
func (s *Service) Subscribe(_ context.Context, conversationID string) (<-chan directline.ActivitySet, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.conversations[conversationID]
	if !ok {
		return nil, nil, ErrConversationNotFound
	}

	id := state.nextSubID
	state.nextSubID++
	ch := make(chan directline.ActivitySet, subscriberBacklog)
	state.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if current, ok := s.conversations[conversationID]; ok {
				if sub, ok := current.subscribers[id]; ok {
					delete(current.subscribers, id)
					close(sub)
				}
			}
		})
	}
	return ch, cancel, nil
}

// End 结束会话并关闭所有订阅通道。
func (s *Service) End(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.conversations[conversationID]
	if !ok {
		return ErrConversationNotFound
	}
	for id, ch := range state.subscribers {
		delete(state.subscribers, id)
		close(ch)
	}
	delete(s.conversations, conversationID)
	return nil
}

// Transcript returns a copy of every activity posted so far.
func (s *Service) Transcript(_ context.Context, conversationID string) ([]directline.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.conversations[conversationID]
	if !ok {
		return nil, ErrConversationNotFound
	}

	copied := make([]directline.Activity, len(state.activities))
	copy(copied, state.activities)
	return copied, nil
}
