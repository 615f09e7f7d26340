// Package outcome keeps the ordered record of every command decision.
package outcome

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/robertarktes/sponsored-events/internal/clock"
	"github.com/robertarktes/sponsored-events/internal/observability"
)

type Entry struct {
	Seq    int64          `json:"seq"`
	Source string         `json:"source"`
	Code   string         `json:"code"`
	Fields map[string]any `json:"fields,omitempty"`
	At     time.Time      `json:"at"`
}

// Sink receives entries after they are appended. A slow or failing sink
// never affects Record.
type Sink interface {
	Write(ctx context.Context, e Entry) error
}

const sinkBuffer = 1024

type Log struct {
	mu      sync.Mutex
	entries []Entry
	nextSeq int64
	clock   clock.Clock
	logger  observability.Logger

	sink    Sink
	pending chan Entry
}

type Option func(*Log)

func WithClock(c clock.Clock) Option {
	return func(l *Log) { l.clock = c }
}

// WithSink forwards entries to s once Run is started.
func WithSink(s Sink) Option {
	return func(l *Log) {
		l.sink = s
		l.pending = make(chan Entry, sinkBuffer)
	}
}

func New(logger observability.Logger, opts ...Option) *Log {
	l := &Log{
		nextSeq: 1,
		clock:   clock.NewSystem(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record appends an entry. fields is copied.
func (l *Log) Record(ctx context.Context, source, code string, fields map[string]any) Entry {
	l.mu.Lock()
	e := Entry{
		Seq:    l.nextSeq,
		Source: source,
		Code:   code,
		Fields: maps.Clone(fields),
		At:     l.clock.Now(),
	}
	l.nextSeq++
	l.entries = append(l.entries, e)
	l.mu.Unlock()

	observability.OutcomesTotal.WithLabelValues(source, code).Inc()
	l.logger.WithFields(map[string]interface{}{
		"source": source,
		"code":   code,
		"seq":    e.Seq,
	}).Debug("outcome recorded")

	if l.pending != nil {
		select {
		case l.pending <- e:
		default:
			l.logger.WithField("seq", e.Seq).Warn("outcome sink backlog full, entry not forwarded")
		}
	}
	return e
}

// Run forwards recorded entries to the sink until ctx is done. It returns
// immediately when no sink is configured.
func (l *Log) Run(ctx context.Context) {
	if l.pending == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-l.pending:
			if err := l.sink.Write(ctx, e); err != nil {
				l.logger.WithField("seq", e.Seq).Error("outcome sink write failed: ", err)
			}
		}
	}
}

func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Last returns the most recent entry, or false if the log is empty.
func (l *Log) Last() (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Codes lists recorded codes in order, optionally limited to one source.
func (l *Log) Codes(source string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.entries {
		if source == "" || e.Source == source {
			out = append(out, e.Code)
		}
	}
	return out
}

// Clear drops all entries. Sequence numbers keep increasing.
func (l *Log) Clear() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}
