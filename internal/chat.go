package internal

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ChatApology is shown in place of an assistant reply when a send fails
const ChatApology = "죄송합니다. 답변을 불러오지 못했습니다. 잠시 후 다시 시도해 주세요."

// ChatBackend is the part of the API the chat manager needs
type ChatBackend interface {
	SendChat(ctx context.Context, message, sessionID string) (*ChatReply, error)
	ChatSessions(ctx context.Context) ([]ChatSession, error)
	ChatHistory(ctx context.Context, sessionID string) ([]Message, error)
}

// ChatState is the manager's coarse lifecycle state
type ChatState string

const (
	ChatIdle    ChatState = "idle"
	ChatLoading ChatState = "loading"
	ChatActive  ChatState = "active"
	ChatNewChat ChatState = "new_chat"
)

// ChatManager holds one counseling conversation. Sends are optimistic: the
// user's message is shown before the server answers.
type ChatManager struct {
	backend ChatBackend
	now     func() time.Time

	mu        sync.Mutex
	sessionID string
	messages  []Message
	loading   bool
	newChat   bool
	lastErr   string
}

// NewChatManager creates an idle manager
func NewChatManager(backend ChatBackend) *ChatManager {
	return &ChatManager{backend: backend, now: time.Now}
}

// SessionID returns the server-side session id, or "" before the first reply
func (m *ChatManager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// Messages returns a copy of the conversation in display order
func (m *ChatManager) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.messages...)
}

// LastError returns the text of the most recent failure
func (m *ChatManager) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Loading reports whether a send is in flight
func (m *ChatManager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// InNewChat reports whether history restoration is suppressed
func (m *ChatManager) InNewChat() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.newChat
}

// State summarizes the manager
func (m *ChatManager) State() ChatState {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.loading:
		return ChatLoading
	case m.newChat:
		return ChatNewChat
	case m.sessionID != "" || len(m.messages) > 0:
		return ChatActive
	default:
		return ChatIdle
	}
}

// SendMessage posts text to the current session. Blank text and sends while
// another is in flight are ignored and return (nil, nil). On failure the user's
// message is kept, an apology is appended and the error is returned.
func (m *ChatManager) SendMessage(ctx context.Context, text string) (*Message, error) {
	text = strings.TrimSpace(text)

	m.mu.Lock()
	if text == "" || m.loading {
		m.mu.Unlock()
		return nil, nil
	}
	m.loading = true
	m.lastErr = ""
	pending := Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   text,
		CreatedAt: m.now().UTC().Format(time.RFC3339),
		Pending:   true,
	}
	m.messages = append(m.messages, pending)
	sessionID := m.sessionID
	m.mu.Unlock()

	reply, err := m.backend.SendChat(ctx, text, sessionID)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false

	if err != nil {
		LogWarn("Chat send failed: %v", err)
		m.lastErr = UserMessage(err, ChatApology)
		m.messages = append(m.messages, Message{
			ID:        uuid.NewString(),
			Role:      RoleAssistant,
			Content:   ChatApology,
			CreatedAt: m.now().UTC().Format(time.RFC3339),
		})
		return nil, err
	}

	if reply.SessionID != "" {
		m.sessionID = reply.SessionID
	}
	for i := range m.messages {
		if m.messages[i].ID == pending.ID {
			confirmed := pending
			confirmed.Pending = false
			m.messages[i] = confirmed
			break
		}
	}
	answer := reply.Message
	m.messages = append(m.messages, answer)
	m.newChat = false
	return &answer, nil
}

// StartNewChat clears the conversation and suppresses restoration until the
// next successful send or explicit selection
func (m *ChatManager) StartNewChat() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
	m.sessionID = ""
	m.lastErr = ""
	m.newChat = true
}

// OnFocus restores the most recent session when the conversation is empty
// and the user has not asked for a new chat. It returns whether it restored.
func (m *ChatManager) OnFocus(ctx context.Context) (bool, error) {
	if !m.needsRestore() {
		return false, nil
	}

	sessions, err := m.backend.ChatSessions(ctx)
	if err != nil {
		return false, err
	}
	if len(sessions) == 0 {
		return false, nil
	}

	latest := sessions[0]
	history, err := m.backend.ChatHistory(ctx, latest.ID)
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// state may have moved on while fetching
	if m.newChat || m.loading || (m.sessionID != "" && len(m.messages) > 0) {
		return false, nil
	}
	m.sessionID = latest.ID
	m.messages = append([]Message(nil), history...)
	LogDebug("Restored chat session %s (%d messages)", latest.ID, len(history))
	return true, nil
}

func (m *ChatManager) needsRestore() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (m.sessionID == "" || len(m.messages) == 0) && !m.newChat && !m.loading
}

// SelectSession loads a session's history and makes it current
func (m *ChatManager) SelectSession(ctx context.Context, sessionID string) error {
	history, err := m.backend.ChatHistory(ctx, sessionID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionID = sessionID
	m.messages = append([]Message(nil), history...)
	m.newChat = false
	m.lastErr = ""
	return nil
}

// ListSessions returns the account's sessions, most recent first
func (m *ChatManager) ListSessions(ctx context.Context) ([]ChatSession, error) {
	return m.backend.ChatSessions(ctx)
}
