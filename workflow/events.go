package workflow

import (
	"sync"

	"github.com/google/uuid"
)

// EventType 状态变更事件类型
type EventType string

const (
	EventLogoStarted   EventType = "logo_started"
	EventLogoReady     EventType = "logo_ready"
	EventLogoUploaded  EventType = "logo_uploaded"
	EventVideoStarted  EventType = "video_started"
	EventProgress      EventType = "progress"
	EventVideoReady    EventType = "video_ready"
	EventError         EventType = "error"
	EventCredentialSet EventType = "credential_selected"
	EventReset         EventType = "reset"
)

// Event carries a snapshot taken right after the change.
type Event struct {
	Type  EventType `json:"type"`
	State State     `json:"state"`
}

// EventHandler receives state change events. Handlers must not block.
type EventHandler func(Event)

type subscribers struct {
	mu       sync.RWMutex
	handlers map[string]EventHandler
}

func (s *subscribers) add(h EventHandler) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handlers == nil {
		s.handlers = make(map[string]EventHandler)
	}
	id := "sub-" + uuid.NewString()
	s.handlers[id] = h
	return id
}

func (s *subscribers) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handlers, id)
}

func (s *subscribers) publish(ev Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.handlers {
		h(ev)
	}
}
