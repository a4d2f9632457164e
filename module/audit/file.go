package audit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentjobs/validation-gateway/module"
)

// Logger writes audit entries as JSON lines.
type Logger struct {
	mu     sync.Mutex
	log    zerolog.Logger
	closer io.Closer
}

var _ module.Auditor = (*Logger)(nil)

// NewLogger returns an auditor writing to the given writer.
func NewLogger(w io.Writer) *Logger {
	return &Logger{
		log: zerolog.New(w).With().Timestamp().Logger(),
	}
}

// NewFileLogger returns an auditor appending to the file at path.
func NewFileLogger(path string) (*Logger, error) {
	err := os.MkdirAll(filepath.Dir(path), 0o700)
	if err != nil {
		return nil, fmt.Errorf("could not create audit directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("could not open audit log: %w", err)
	}
	l := NewLogger(file)
	l.closer = file
	return l, nil
}

func (l *Logger) Log(entry module.AuditEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	event := l.log.Log().
		Str("component", entry.Component).
		Str("action", entry.Action).
		Uint64("job_id", uint64(entry.JobID)).
		Str("agent", entry.Agent).
		Bool("success", entry.Success)
	if len(entry.Metadata) > 0 {
		event = event.Interface("metadata", entry.Metadata)
	}
	event.Time("recorded_at", time.Now().UTC()).Send()
}

// Close closes the underlying file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Nop discards all entries.
type Nop struct{}

var _ module.Auditor = Nop{}

func (Nop) Log(module.AuditEntry) {}
