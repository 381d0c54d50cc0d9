package events

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// History keeps the most recent events for the session activity dialog
type History struct {
	mu     sync.Mutex
	limit  int
	events []Event
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = 100
	}
	return &History{limit: limit}
}

func (h *History) GetID() string {
	return "history"
}

func (h *History) Handle(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.events = append(h.events, event)
	if len(h.events) > h.limit {
		h.events = h.events[len(h.events)-h.limit:]
	}
}

// Events returns recorded events ordered by timestamp
func (h *History) Events() []Event {
	h.mu.Lock()
	out := make([]Event, len(h.events))
	copy(out, h.events)
	h.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// Summary renders one line per event
func (h *History) Summary() string {
	events := h.Events()
	if len(events) == 0 {
		return "No activity yet."
	}

	var sb strings.Builder
	for _, e := range events {
		fmt.Fprintf(&sb, "%s  %s", e.Timestamp.Format("15:04:05"), e.Type)
		if path, ok := e.Data["path"]; ok {
			fmt.Fprintf(&sb, "  %v", path)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
