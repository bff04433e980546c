package logging

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RowanDark/classic/internal/redact"
)

type EventType string

const (
	EventEncode   EventType = "cipher_encode"
	EventDecode   EventType = "cipher_decode"
	EventAnalyse  EventType = "cipher_analyse"
	EventDetect   EventType = "cipher_detect"
	EventPipeline EventType = "cipher_pipeline"
	EventRejected EventType = "request_rejected"
	EventServer   EventType = "server_lifecycle"
)

type Outcome string

const (
	OutcomeInfo    Outcome = "info"
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// AuditEvent records one handled request. Plaintext and keys never appear
// in an event; Reason and Metadata are redacted before encoding.
type AuditEvent struct {
	Timestamp   time.Time      `json:"timestamp"`
	Component   string         `json:"component"`
	RequestID   string         `json:"request_id,omitempty"`
	EventType   EventType      `json:"event_type"`
	Cipher      string         `json:"cipher,omitempty"`
	InputLength int            `json:"input_length,omitempty"`
	Duration    time.Duration  `json:"duration_ns,omitempty"`
	Outcome     Outcome        `json:"outcome,omitempty"`
	Reason      string         `json:"reason,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// NewRequestID returns a random identifier correlating audit events with
// the request that produced them.
func NewRequestID() string {
	return uuid.NewString()
}

type Option func(*config) error

type config struct {
	writers          []io.Writer
	closers          []io.Closer
	useDefaultWriter bool
}

func defaultConfig() *config {
	return &config{writers: []io.Writer{os.Stdout}, useDefaultWriter: true}
}

func WithWriter(w io.Writer) Option {
	return func(cfg *config) error {
		if w == nil {
			return errors.New("writer cannot be nil")
		}
		cfg.writers = append(cfg.writers, w)
		return nil
	}
}

func WithFile(path string) Option {
	return func(cfg *config) error {
		if strings.TrimSpace(path) == "" {
			return errors.New("file path cannot be empty")
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return err
		}
		cfg.writers = append(cfg.writers, f)
		cfg.closers = append(cfg.closers, f)
		return nil
	}
}

func WithoutStdout() Option {
	return func(cfg *config) error {
		cfg.useDefaultWriter = false
		filtered := cfg.writers[:0]
		for _, w := range cfg.writers {
			if w == os.Stdout {
				continue
			}
			filtered = append(filtered, w)
		}
		cfg.writers = filtered
		return nil
	}
}

type auditCore struct {
	mu      sync.Mutex
	encoder *json.Encoder
	closers []io.Closer
}

// AuditLogger writes audit events as JSON lines. Loggers derived with
// WithComponent share the writers of their parent.
type AuditLogger struct {
	component   string
	core        *auditCore
	ownsClosers bool
}

func NewAuditLogger(component string, opts ...Option) (*AuditLogger, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			for _, closer := range cfg.closers {
				_ = closer.Close()
			}
			return nil, err
		}
	}
	if !cfg.useDefaultWriter && len(cfg.writers) == 0 {
		return nil, errors.New("no writers configured for audit logger")
	}
	writer := io.MultiWriter(cfg.writers...)
	enc := json.NewEncoder(writer)
	enc.SetEscapeHTML(false)
	return &AuditLogger{
		component:   component,
		core:        &auditCore{encoder: enc, closers: cfg.closers},
		ownsClosers: true,
	}, nil
}

// Discard returns a logger that drops every event.
func Discard() *AuditLogger {
	logger, _ := NewAuditLogger("discard", WithoutStdout(), WithWriter(io.Discard))
	return logger
}

func (l *AuditLogger) Close() error {
	if l == nil || !l.ownsClosers || l.core == nil {
		return nil
	}
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	var firstErr error
	for _, closer := range l.core.closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.core.closers = nil
	return firstErr
}

func (l *AuditLogger) Emit(event AuditEvent) error {
	if l == nil {
		return errors.New("nil audit logger")
	}
	if l.core == nil {
		return errors.New("nil audit logger core")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	} else {
		event.Timestamp = event.Timestamp.UTC()
	}
	if event.Component == "" {
		event.Component = l.component
	}
	event.Reason = redact.String(event.Reason)
	if len(event.Metadata) > 0 {
		event.Metadata = redact.Map(event.Metadata)
	}
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	return l.core.encoder.Encode(event)
}

func (l *AuditLogger) WithComponent(component string) *AuditLogger {
	if l == nil || l.core == nil {
		return nil
	}
	return &AuditLogger{
		component:   component,
		core:        l.core,
		ownsClosers: false,
	}
}
