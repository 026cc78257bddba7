package coach

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	greeting       = "Hello! I'm your AI Fitness Coach. How can I help you with your training today?"
	fallbackReply  = "I'm sorry, I couldn't process that."
	troubleMessage = "I'm having trouble connecting to the server. Please try again later."
)

// ErrRateLimited is returned when questions arrive faster than the
// configured budget allows.
var ErrRateLimited = errors.New("coach: too many questions, slow down")

// Message is one chat transcript entry.
type Message struct {
	ID      string
	Role    string
	Content string
	SentAt  time.Time
}

type apiClient interface {
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
}

type askRequest struct {
	Question string `json:"question"`
}

// Chat holds an in-memory coach conversation. Answers are never cached and
// never retried, every question is a fresh gateway call.
type Chat struct {
	api     apiClient
	limiter *rate.Limiter

	NowFunc func() time.Time

	mu       sync.Mutex
	messages []Message
}

// NewChat seeds the transcript with the assistant greeting. requestsPerMinute
// bounds how fast questions may be sent.
func NewChat(api apiClient, requestsPerMinute int) *Chat {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 10
	}
	c := &Chat{
		api:     api,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute),
		NowFunc: time.Now,
	}
	c.messages = []Message{c.newMessage(RoleAssistant, greeting)}
	return c
}

func (c *Chat) newMessage(role, content string) Message {
	return Message{
		ID:      uuid.NewString(),
		Role:    role,
		Content: content,
		SentAt:  c.NowFunc(),
	}
}

// Messages returns a copy of the transcript, oldest first.
func (c *Chat) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Ask sends a question and appends both sides of the exchange to the
// transcript. When the gateway call fails, a canned connectivity reply is
// appended and the underlying error is returned.
func (c *Chat) Ask(ctx context.Context, question string) (Message, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Message{}, errors.New("coach: empty question")
	}
	if !c.limiter.Allow() {
		return Message{}, ErrRateLimited
	}

	c.append(c.newMessage(RoleUser, question))

	data, err := c.api.Post(ctx, "/ai-coach/chat", askRequest{Question: question})
	if err != nil {
		log.Errorf("coach question failed: %s", err)
		trouble := c.newMessage(RoleAssistant, troubleMessage)
		c.append(trouble)
		return trouble, err
	}

	reply := c.newMessage(RoleAssistant, decodeReply(data))
	c.append(reply)
	return reply, nil
}

func (c *Chat) append(msg Message) {
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
}

// decodeReply accepts {"text": "..."} payloads, bare JSON strings and raw
// text, in that order of preference.
func decodeReply(data json.RawMessage) string {
	if len(data) == 0 {
		return fallbackReply
	}
	var structured struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &structured); err == nil && structured.Text != "" {
		return structured.Text
	}
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil && plain != "" {
		return plain
	}
	if text := strings.TrimSpace(string(data)); text != "" {
		return text
	}
	return fallbackReply
}
