// Package billing holds the authoritative, ordered collection of bills and
// mirrors it to a persistence collaborator after every mutation.
//
// The whole collection is serialized as one JSON array and written under a
// single key; there are no incremental writes. The blob is read once, when
// the store is created.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"invoicer/internal/core"
	"invoicer/internal/storage"
)

// DefaultKey is the storage key the bill collection lives under.
const DefaultKey = "billing_data"

// Blob is the persistence collaborator: get and set one serialized blob.
// Get returns storage.ErrNotFound when nothing has been written yet.
type Blob interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
}

type Store struct {
	mu     sync.Mutex
	blob   Blob
	key    string
	logger *slog.Logger
	bills  []core.Bill
}

type Option func(*Store)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New loads the persisted collection. A missing, unreadable or corrupt
// blob yields an empty store; the problem is logged and never returned.
func New(ctx context.Context, blob Blob, opts ...Option) *Store {
	s := &Store{
		blob:   blob,
		key:    DefaultKey,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.bills = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) []core.Bill {
	data, err := s.blob.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to read bills, starting empty", "key", s.key, "error", err)
		return nil
	}
	var bills []core.Bill
	if err := json.Unmarshal(data, &bills); err != nil {
		s.logger.WarnContext(ctx, "Stored bills are corrupt, starting empty", "key", s.key, "error", err)
		return nil
	}
	s.logger.DebugContext(ctx, "Loaded bills", "key", s.key, "count", len(bills))
	return bills
}

// List returns every bill in insertion order.
func (s *Store) List() []core.Bill {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.bills, nil)
}

// FilterByType returns the bills of type t in insertion order.
func (s *Store) FilterByType(t core.BillType) []core.Bill {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.bills, func(b core.Bill) bool { return b.Type == t })
}

// FindByID returns the first bill with the given id.
func (s *Store) FindByID(id string) (core.Bill, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.bills[i].Clone(), true
	}
	return core.Bill{}, false
}

// Add appends bill after recomputing its derived totals. Ids are not
// checked for uniqueness; that is the caller's job.
func (s *Store) Add(ctx context.Context, bill core.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bill = bill.Clone()
	bill.Recalculate()

	next := make([]core.Bill, len(s.bills), len(s.bills)+1)
	copy(next, s.bills)
	next = append(next, bill)
	if err := s.persist(ctx, next); err != nil {
		return fmt.Errorf("add bill %s: %w", bill.ID, err)
	}
	s.bills = next
	return nil
}

// Update replaces the first bill with the same id, keeping its position,
// id, type and creation time. Unknown ids are ignored.
func (s *Store) Update(ctx context.Context, bill core.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(bill.ID)
	if i < 0 {
		s.logger.DebugContext(ctx, "Update of unknown bill ignored", "id", bill.ID)
		return nil
	}

	existing := s.bills[i]
	bill = bill.Clone()
	bill.Type = existing.Type
	bill.CreatedAt = existing.CreatedAt
	bill.Recalculate()

	next := make([]core.Bill, len(s.bills))
	copy(next, s.bills)
	next[i] = bill
	if err := s.persist(ctx, next); err != nil {
		return fmt.Errorf("update bill %s: %w", bill.ID, err)
	}
	s.bills = next
	return nil
}

// Delete removes every bill with the given id. Unknown ids are ignored and
// nothing is written.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, _, err := s.Remove(ctx, id)
	return err
}

// Remove is Delete that also reports the first removed bill. ok is false
// when no bill had the id; the check and the write happen under one lock.
func (s *Store) Remove(ctx context.Context, id string) (removed core.Bill, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]core.Bill, 0, len(s.bills))
	for _, b := range s.bills {
		if b.ID != id {
			next = append(next, b)
		} else if !ok {
			removed, ok = b.Clone(), true
		}
	}
	if !ok {
		s.logger.DebugContext(ctx, "Delete of unknown bill ignored", "id", id)
		return core.Bill{}, false, nil
	}
	if err := s.persist(ctx, next); err != nil {
		return core.Bill{}, false, fmt.Errorf("delete bill %s: %w", id, err)
	}
	s.bills = next
	return removed, true, nil
}

// persist writes the full collection. The caller commits bills to memory
// only after it succeeds.
func (s *Store) persist(ctx context.Context, bills []core.Bill) error {
	if bills == nil {
		bills = []core.Bill{}
	}
	data, err := json.Marshal(bills)
	if err != nil {
		return fmt.Errorf("encode bills: %w", err)
	}
	if err := s.blob.Set(ctx, s.key, data); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist bills", "key", s.key, "count", len(bills), "error", err)
		return fmt.Errorf("persist bills: %w", err)
	}
	return nil
}

func (s *Store) indexOf(id string) int {
	for i, b := range s.bills {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(bills []core.Bill, keep func(core.Bill) bool) []core.Bill {
	out := make([]core.Bill, 0, len(bills))
	for _, b := range bills {
		if keep == nil || keep(b) {
			out = append(out, b.Clone())
		}
	}
	return out
}
