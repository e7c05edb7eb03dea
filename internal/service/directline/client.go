package directline

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/kroy92/copilot-automation-testing/internal/config"
	"github.com/kroy92/copilot-automation-testing/internal/model/directline"
)

const (
	defaultLocale         = "en-EN"
	defaultUserID         = "user1"
	defaultReceiveTimeout = 20 * time.Second
)

// Options configures a Client.
type Options struct {
	TokenEndpoint    string
	BaseURL          string
	Locale           string
	UserID           string
	ReceiveTimeout   time.Duration
	HandshakeTimeout time.Duration
	HTTPClient       *http.Client
}

// OptionsFromConfig maps the environment configuration onto client options.
func OptionsFromConfig(cfg config.DirectLineConfig) Options {
	return Options{
		TokenEndpoint:    cfg.TokenEndpoint,
		BaseURL:          cfg.BaseURL,
		Locale:           cfg.Locale,
		UserID:           cfg.UserID,
		ReceiveTimeout:   cfg.ReceiveTimeout,
		HandshakeTimeout: cfg.HandshakeTimeout,
		HTTPClient:       &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

// Client 驱动与单个机器人会话的完整交互：协商、发送、接收与断开。
// 一个 Client 只对应一个会话，不支持并发调用。
type Client struct {
	opts       Options
	negotiator Negotiator
	sender     Sender

	session  directline.Session
	stream   FrameSource
	receiver *Receiver
}

// NewClient creates a client; call Connect before exchanging turns.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = config.DefaultDirectLineBaseURL
	}
	if opts.Locale == "" {
		opts.Locale = defaultLocale
	}
	if opts.UserID == "" {
		opts.UserID = defaultUserID
	}
	if opts.ReceiveTimeout <= 0 {
		opts.ReceiveTimeout = defaultReceiveTimeout
	}

	return &Client{
		opts: opts,
		negotiator: Negotiator{
			HTTPClient:       opts.HTTPClient,
			BaseURL:          opts.BaseURL,
			HandshakeTimeout: opts.HandshakeTimeout,
		},
		sender: Sender{
			HTTPClient: opts.HTTPClient,
			BaseURL:    opts.BaseURL,
			Locale:     opts.Locale,
			UserID:     opts.UserID,
		},
	}
}

// Connect negotiates a new conversation. Any previous conversation is closed first.
func (c *Client) Connect(ctx context.Context) error {
	if c.stream != nil {
		_ = c.Disconnect()
	}

	session, stream, err := c.negotiator.Negotiate(ctx, c.opts.TokenEndpoint)
	if err != nil {
		log.Printf("[directline] failed to connect to bot: %v", err)
		return err
	}

	c.attach(session, stream)
	log.Println("[directline] successfully connected to the bot")
	return nil
}

func (c *Client) attach(session directline.Session, stream FrameSource) {
	c.session = session
	c.stream = stream
	c.receiver = NewReceiver(stream)
}

// Connected reports whether a conversation is open.
func (c *Client) Connected() bool {
	return c.stream != nil
}

// Session returns the negotiated session.
func (c *Client) Session() (directline.Session, bool) {
	return c.session, c.stream != nil
}

// Send posts one user turn.
func (c *Client) Send(ctx context.Context, text string) error {
	if c.stream == nil {
		return ErrNotConnected
	}

	if err := c.sender.Send(ctx, c.session, text); err != nil {
		log.Printf("[directline] failed to send message: %v", err)
		return err
	}
	return nil
}

// Receive 使用配置的默认超时等待机器人回复。
func (c *Client) Receive(ctx context.Context) (Result, error) {
	return c.ReceiveWithin(ctx, c.opts.ReceiveTimeout)
}

// ReceiveWithin waits for the next bot reply with an explicit per-frame timeout.
func (c *Client) ReceiveWithin(ctx context.Context, timeout time.Duration) (Result, error) {
	if c.stream == nil {
		return Result{}, ErrNotConnected
	}

	result, err := c.receiver.Receive(ctx, timeout)
	switch {
	case err != nil:
		if result.Kind == ResultClosed {
			log.Printf("[directline] stream closed unexpectedly: %v", err)
			c.release()
		}
	case result.Kind == ResultTimeout:
		log.Printf("[directline] no bot response within %s", timeout)
	case result.Kind == ResultMessage:
		log.Printf("[directline] bot response received (%d utterances)", len(result.Utterances))
	}
	return result, err
}

// Disconnect 关闭流连接并使会话失效，可重复调用。
func (c *Client) Disconnect() error {
	if c.stream == nil {
		log.Println("[directline] disconnect called without an open stream")
		return nil
	}

	err := c.stream.Close()
	c.clear()
	log.Println("[directline] websocket connection closed")
	return err
}

func (c *Client) release() {
	if c.stream != nil {
		_ = c.stream.Close()
	}
	c.clear()
}

func (c *Client) clear() {
	c.session = directline.Session{}
	c.stream = nil
	c.receiver = nil
}
