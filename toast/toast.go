package toast

import (
	"sync"
	"time"

	"tripdesk/apiclient"

	"github.com/google/uuid"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

type Toast struct {
	ID      string `json:"id"`
	Level   Level  `json:"level"`
	Message string `json:"message"`
	At      int64  `json:"at"`
}

func New(level Level, msg string) Toast {
	return Toast{ID: uuid.New().String(), Level: level, Message: msg, At: time.Now().UnixMilli()}
}

// Notifier is how controllers surface feedback to the admin.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
}

// Fail reports err on n using the server message when present, else
// fallback. Validation and transport failures share this one channel.
func Fail(n Notifier, err error, fallback string) {
	if n == nil || err == nil {
		return
	}
	n.Error(apiclient.Message(err, fallback))
}

// Recorder collects toasts for a single HTTP response.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *Recorder) add(t Toast) {
	r.mu.Lock()
	r.toasts = append(r.toasts, t)
	r.mu.Unlock()
}

func (r *Recorder) Success(msg string) { r.add(New(LevelSuccess, msg)) }
func (r *Recorder) Error(msg string)   { r.add(New(LevelError, msg)) }
func (r *Recorder) Info(msg string)    { r.add(New(LevelInfo, msg)) }

// Toasts returns a copy of what was recorded, never nil.
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Toast, len(r.toasts))
	copy(out, r.toasts)
	return out
}

// Discard drops everything.
type Discard struct{}

func (Discard) Success(string) {}
func (Discard) Error(string)   {}
func (Discard) Info(string)    {}
