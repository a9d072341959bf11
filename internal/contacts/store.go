package contacts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/storage"
)

type appendReq struct {
	sub  models.Submission
	resp chan appendResp
}

type appendResp struct {
	rec models.ContactRecord
	err error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for store diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithClock overrides the time source used to stamp new records.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store owns the contact record file.
//
// Concurrency model: a single goroutine performs every load-append-save
// sequence, so concurrent Append calls are applied one after another and no
// update is lost. Reads bypass the writer; Write replaces the file by rename,
// so a reader sees either the old or the new array.
type Store struct {
	*Reader

	now    func() time.Time
	logger *slog.Logger

	appendCh chan appendReq
	stopCh   chan struct{}
	stopped  chan struct{}
	closed   atomic.Bool

	// lastSum is the checksum of the most recent content this process wrote.
	lastSum atomic.Pointer[string]
}

// NewStore creates a store for the file name under p and starts its writer.
func NewStore(p storage.Provider, name string, opts ...Option) *Store {
	s := &Store{
		now:      time.Now,
		logger:   slog.Default(),
		appendCh: make(chan appendReq),
		stopCh:   make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reader = NewReader(p, name, s.logger)

	go s.run()
	return s
}

func (s *Store) run() {
	defer close(s.stopped)

	var lastID int64
	for {
		select {
		case <-s.stopCh:
			return
		case req := <-s.appendCh:
			rec, err := s.appendLocked(req.sub, &lastID)
			req.resp <- appendResp{rec: rec, err: err}
		}
	}
}

// appendLocked runs on the writer goroutine only.
func (s *Store) appendLocked(sub models.Submission, lastID *int64) (models.ContactRecord, error) {
	elems := s.load()

	rec := models.NewContactRecord(sub, s.now())
	if n := len(elems); n > 0 {
		if id, ok := recordID(elems[n-1]); ok && id > *lastID {
			*lastID = id
		}
	}
	if rec.ID <= *lastID {
		rec.ID = *lastID + 1
	}
	*lastID = rec.ID

	raw, err := json.Marshal(rec)
	if err != nil {
		return models.ContactRecord{}, fmt.Errorf("%w: encode: %v", apperr.ErrPersistence, err)
	}
	data, err := encode(append(elems, raw))
	if err != nil {
		return models.ContactRecord{}, fmt.Errorf("%w: encode: %v", apperr.ErrPersistence, err)
	}

	sum := storage.Checksum(data)
	s.lastSum.Store(&sum)
	if err := s.fs.Write(s.name, data); err != nil {
		return models.ContactRecord{}, fmt.Errorf("%w: %w", apperr.ErrPersistence, err)
	}
	return rec, nil
}

// Append validates sub, stamps it with an id and creation time, and appends
// it to the store file. Existing elements are written back unchanged. The
// previous file content survives a failed write. ctx only bounds the wait for
// the writer; an accepted append is always completed.
func (s *Store) Append(ctx context.Context, sub models.Submission) (models.ContactRecord, error) {
	if err := sub.Validate(); err != nil {
		return models.ContactRecord{}, fmt.Errorf("%w: %v", apperr.ErrMissingFields, err)
	}
	if s.closed.Load() {
		return models.ContactRecord{}, fmt.Errorf("%w: store closed", apperr.ErrPersistence)
	}

	req := appendReq{sub: sub, resp: make(chan appendResp, 1)}
	select {
	case s.appendCh <- req:
	case <-ctx.Done():
		return models.ContactRecord{}, ctx.Err()
	case <-s.stopped:
		return models.ContactRecord{}, fmt.Errorf("%w: store closed", apperr.ErrPersistence)
	}

	// Once accepted the write goes ahead, so its outcome is reported even if
	// ctx is cancelled meanwhile.
	resp := <-req.resp
	return resp.rec, resp.err
}

// Close stops the writer goroutine. An Append in progress completes first.
func (s *Store) Close() {
	if s.closed.CompareAndSwap(false, true) {
		close(s.stopCh)
	}
	<-s.stopped
}

// wroteLast reports whether data is exactly what this store wrote last.
func (s *Store) wroteLast(data []byte) bool {
	sum := s.lastSum.Load()
	return sum != nil && *sum == storage.Checksum(data)
}
