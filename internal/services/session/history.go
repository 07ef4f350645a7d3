package session

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
)

// exchange is one completed user/assistant turn
type exchange struct {
	UserMessage string
	Response    string
}

// Manager keeps bounded in-memory conversation history per session.
// Sessions are identified by opaque IDs; history is a FIFO of the most
// recent exchanges. Two writers on the same session ID race on ordering
// only, never on map integrity.
type Manager struct {
	mu         sync.RWMutex
	sessions   map[string][]exchange
	maxHistory int
	logger     arbor.ILogger
}

// NewManager creates a session manager keeping at most maxHistory
// exchanges per session.
func NewManager(maxHistory int, logger arbor.ILogger) *Manager {
	if maxHistory <= 0 {
		maxHistory = 2
	}
	return &Manager{
		sessions:   make(map[string][]exchange),
		maxHistory: maxHistory,
		logger:     logger,
	}
}

// CreateSession allocates a fresh session ID with empty history
func (m *Manager) CreateSession() string {
	id := uuid.New().String()

	m.mu.Lock()
	m.sessions[id] = nil
	m.mu.Unlock()

	m.logger.Debug().Str("session_id", id).Msg("Session created")
	return id
}

// AddExchange appends a completed turn, evicting the oldest once the
// session exceeds its bound. Unknown session IDs are created on write.
func (m *Manager) AddExchange(sessionID, userMessage, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := append(m.sessions[sessionID], exchange{
		UserMessage: userMessage,
		Response:    response,
	})
	if len(history) > m.maxHistory {
		history = history[len(history)-m.maxHistory:]
	}
	m.sessions[sessionID] = history
}

// Render formats a session's history for prompt inclusion. Empty or
// unknown sessions render as the empty string.
func (m *Manager) Render(sessionID string) string {
	m.mu.RLock()
	history := m.sessions[sessionID]
	m.mu.RUnlock()

	if len(history) == 0 {
		return ""
	}

	lines := make([]string, 0, len(history))
	for _, ex := range history {
		lines = append(lines, "User: "+ex.UserMessage+"\nAssistant: "+ex.Response)
	}
	return strings.Join(lines, "\n")
}

// ClearSession drops a session's history entirely
func (m *Manager) ClearSession(sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
}
