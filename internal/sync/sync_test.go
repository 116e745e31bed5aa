package sync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/groblegark/confpub/internal/model"
)

// captureDest records every payload written to it.
type captureDest struct {
	mu     sync.Mutex
	writes [][]byte
	err    error
}

func (d *captureDest) Write(ctx context.Context, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.writes = append(d.writes, append([]byte(nil), data...))
	return nil
}

func (d *captureDest) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.writes)
}

func TestScheduler_InitialSync(t *testing.T) {
	ms := &mockStore{records: []*model.ConfigRecord{
		testRecord("shop", "faq", model.StatusDraft, 1),
	}}
	dest := &captureDest{}

	s := NewScheduler(ms, []Destination{dest}, time.Hour, slog.Default())
	s.Start()
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for dest.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("initial sync never ran")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestScheduler_WritesAllDestinations(t *testing.T) {
	ms := &mockStore{}
	a, b := &captureDest{}, &captureDest{}

	s := NewScheduler(ms, []Destination{a, b}, time.Hour, slog.Default())
	s.Start()
	s.Stop()

	if a.count() != 1 || b.count() != 1 {
		t.Errorf("writes = %d/%d, want 1 each", a.count(), b.count())
	}
}

func TestScheduler_DestinationErrorDoesNotStopOthers(t *testing.T) {
	ms := &mockStore{}
	failing := &captureDest{err: errors.New("s3 down")}
	ok := &captureDest{}

	s := NewScheduler(ms, []Destination{failing, ok}, time.Hour, slog.Default())
	s.Start()
	s.Stop()

	if ok.count() != 1 {
		t.Errorf("healthy destination writes = %d, want 1", ok.count())
	}
}
