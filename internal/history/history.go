package history

import (
	"sync"

	"ai-memories/internal/journal"
	"ai-memories/internal/llm"
)

// State is the lifecycle of one conversation.
type State int

const (
	StateInit     State = iota
	StateStarting       // opening turn requested, no user input yet
	StateActive
	StateError // last external call failed; the next successful exchange returns to Active
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateStarting:
		return "starting"
	case StateActive:
		return "active"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Mode selects what a chat's messages do.
type Mode string

const (
	ModeWrite     Mode = "write"     // messages become journal entries
	ModeCompanion Mode = "companion" // journaling-assistant conversation
	ModePastSelf  Mode = "past"      // conversation with the past self
)

// Session is a snapshot of one chat's conversation.
type Session struct {
	Mode       Mode
	Era        journal.Era
	State      State
	Transcript []llm.Message
}

type session struct {
	mode       Mode
	era        journal.Era
	state      State
	transcript []llm.Message
}

// Manager keeps per-chat conversations in memory. Nothing here is persisted.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]*session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[int64]*session)}
}

func (m *Manager) get(chatID int64) *session {
	s, ok := m.sessions[chatID]
	if !ok {
		s = &session{mode: ModeWrite}
		m.sessions[chatID] = s
	}
	return s
}

// Reset forgets the chat entirely.
func (m *Manager) Reset(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
}

// Begin clears the transcript, switches mode and era, and moves the chat
// to StateStarting.
func (m *Manager) Begin(chatID int64, mode Mode, era journal.Era) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.get(chatID)
	s.mode = mode
	s.era = era
	s.transcript = nil
	s.state = StateStarting
}

// Opened records the assistant's opening turn.
func (m *Manager) Opened(chatID int64, reply string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.get(chatID)
	s.transcript = append(s.transcript, llm.Message{Role: llm.RoleAssistant, Content: reply})
	s.state = StateActive
}

// Exchanged records a successful user/assistant round trip.
func (m *Manager) Exchanged(chatID int64, userMsg, reply string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.get(chatID)
	s.transcript = append(s.transcript,
		llm.Message{Role: llm.RoleUser, Content: userMsg},
		llm.Message{Role: llm.RoleAssistant, Content: reply},
	)
	s.state = StateActive
}

// Failed marks the chat as errored, keeping the transcript for a retry.
func (m *Manager) Failed(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.get(chatID).state = StateError
}

// Get returns a copy of the chat's session.
func (m *Manager) Get(chatID int64) Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[chatID]
	if !ok {
		return Session{Mode: ModeWrite, State: StateInit}
	}
	return Session{
		Mode:       s.mode,
		Era:        s.era,
		State:      s.state,
		Transcript: append([]llm.Message(nil), s.transcript...),
	}
}
