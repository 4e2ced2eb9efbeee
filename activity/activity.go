// Package activity keeps the audit trail of mutations made through the
// dashboard.
package activity

import (
	"context"
	"log"
	"sync"
	"time"

	"tripdesk/session"

	"github.com/google/uuid"
)

type Entry struct {
	ID       string    `json:"id" bson:"_id"`
	Actor    string    `json:"actor" bson:"actor"`
	Action   string    `json:"action" bson:"action"`
	Resource string    `json:"resource" bson:"resource"`
	Target   string    `json:"target" bson:"target"`
	Detail   string    `json:"detail,omitempty" bson:"detail,omitempty"`
	At       time.Time `json:"at" bson:"at"`
}

// Actions
const (
	Create  = "create"
	Update  = "update"
	Delete  = "delete"
	Feature = "feature"
	Status  = "status"
)

type Recorder interface {
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// Log records action on resource/target for the admin in ctx. Failures are
// logged and never reach the caller; the mutation already happened.
func Log(ctx context.Context, rec Recorder, action, resource, target, detail string) {
	if rec == nil {
		return
	}
	e := Entry{
		ID:       uuid.New().String(),
		Actor:    session.FromContext(ctx).Actor(),
		Action:   action,
		Resource: resource,
		Target:   target,
		Detail:   detail,
		At:       time.Now().UTC(),
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := rec.Record(ctx, e); err != nil {
		log.Printf("[activity] record %s %s/%s: %v", action, resource, target, err)
	}
}

type Nop struct{}

func (Nop) Record(context.Context, Entry) error          { return nil }
func (Nop) Recent(context.Context, int) ([]Entry, error) { return []Entry{}, nil }

// MemoryCap is how many entries Memory keeps before overwriting the oldest.
const MemoryCap = 200

// Memory keeps the latest MemoryCap entries in process, as a ring.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
	next    int
}

func (m *Memory) Record(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) < MemoryCap {
		m.entries = append(m.entries, e)
		return nil
	}
	m.entries[m.next] = e
	m.next = (m.next + 1) % MemoryCap
	return nil
}

func (m *Memory) Recent(_ context.Context, limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.entries)
	if limit > n {
		limit = n
	}
	if limit < 0 {
		limit = 0
	}
	out := make([]Entry, 0, limit)
	// m.next is the oldest slot once the ring is full, zero before that.
	for i := 1; i <= limit; i++ {
		out = append(out, m.entries[(m.next-i+n)%n])
	}
	return out, nil
}
