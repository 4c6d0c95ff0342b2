package order

import (
	"fmt"
	"sync"
	"time"

	"flora-commerce/internal/logger"
)

// DeadLetterEntry records one failed best-effort side effect. Checkout never
// fails because a delivery could not be scheduled, but the failure has to be
// observable somewhere.
type DeadLetterEntry struct {
	OrderNumber string    `json:"order_number"`
	Reason      string    `json:"reason"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type DeadLetterRecorder interface {
	Record(entry DeadLetterEntry)
}

// DeadLetterLog keeps entries in memory and mirrors them to the logger.
type DeadLetterLog struct {
	mu      sync.Mutex
	entries []DeadLetterEntry
	Logger  *logger.Logger
}

func NewDeadLetterLog(log *logger.Logger) *DeadLetterLog {
	return &DeadLetterLog{Logger: log}
}

func (l *DeadLetterLog) Record(entry DeadLetterEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()

	if l.Logger != nil {
		l.Logger.Error("DEADLETTER", fmt.Sprintf("order %s: %s", entry.OrderNumber, entry.Reason))
	}
}

func (l *DeadLetterLog) Entries() []DeadLetterEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]DeadLetterEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
