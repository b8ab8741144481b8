// Package audit appends one JSON line per authentication attempt to a local
// file. Event IDs are ULIDs, so the file is naturally ordered by time.
package audit

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/otpgate/internal/pkg/id"
)

type EventType string

const (
	EventRegister    EventType = "register"
	EventLogin       EventType = "login"
	EventVerifyLogin EventType = "verify_login"
)

// Event is one line of the audit trail.
type Event struct {
	EventID  string    `json:"event_id"`
	Type     EventType `json:"type"`
	Username string    `json:"username"`
	OK       bool      `json:"ok"`
	At       time.Time `json:"at"`
}

// Logger appends events to a file. A Logger with an empty path is disabled;
// recording never fails a request — write errors are logged and dropped.
type Logger struct {
	mu   sync.Mutex
	path string
}

func New(path string) *Logger {
	return &Logger{path: path}
}

// Record appends one event. Safe for concurrent use.
func (l *Logger) Record(typ EventType, username string, ok bool) {
	if l == nil || l.path == "" {
		return
	}
	ev := Event{
		EventID:  id.NewEvent(),
		Type:     typ,
		Username: username,
		OK:       ok,
		At:       time.Now().UTC(),
	}
	line, err := json.Marshal(ev)
	if err != nil {
		slog.Warn("audit: marshal event", "err", err)
		return
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.Warn("audit: open log", "path", l.path, "err", err)
		return
	}
	defer f.Close()
	if _, err := f.Write(line); err != nil {
		slog.Warn("audit: write event", "path", l.path, "err", err)
	}
}
