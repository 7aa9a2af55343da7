package datastore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lepinkainen/shelfsync/internal/catalog"
)

// MemoryStore is an in-process catalog.Repository. Failures can be injected
// per key, ID or blob URL, and every call is counted.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]catalog.Book
	order   []string
	nextID  int

	// Delay is slept inside every Create, Delete and DeleteBlob call
	Delay time.Duration

	ListErr   error
	CreateErr map[string]error // by composite key
	DeleteErr map[string]error // by record ID
	BlobErr   map[string]error // by blob URL

	Creates     int
	Deletes     int
	BlobDeletes map[string]int

	inFlight    int
	maxInFlight int
}

// NewMemoryStore creates a store pre-populated with books. Books without an
// ID get one assigned.
func NewMemoryStore(books ...catalog.Book) *MemoryStore {
	m := &MemoryStore{
		records:     make(map[string]catalog.Book),
		CreateErr:   make(map[string]error),
		DeleteErr:   make(map[string]error),
		BlobErr:     make(map[string]error),
		BlobDeletes: make(map[string]int),
	}
	for _, b := range books {
		if b.ID == "" {
			b.ID = m.newID()
		}
		if b.Excerpts == nil {
			b.Excerpts = []string{}
		}
		m.records[b.ID] = b
		m.order = append(m.order, b.ID)
	}
	return m
}

func (m *MemoryStore) newID() string {
	m.nextID++
	return fmt.Sprintf("mem-%04d", m.nextID)
}

// Connect is a no-op
func (m *MemoryStore) Connect(_ context.Context) error { return nil }

// Close is a no-op
func (m *MemoryStore) Close() error { return nil }

// List returns the records in insertion order
func (m *MemoryStore) List(ctx context.Context) ([]catalog.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}

	books := make([]catalog.Book, 0, len(m.order))
	for _, id := range m.order {
		books = append(books, m.records[id])
	}
	return books, nil
}

// Create stores book under a new ID
func (m *MemoryStore) Create(ctx context.Context, book catalog.Book) (string, error) {
	defer m.enter()()
	if err := m.sleep(ctx); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Creates++
	if err := m.CreateErr[book.Key()]; err != nil {
		return "", err
	}

	book.ID = m.newID()
	if book.Excerpts == nil {
		book.Excerpts = []string{}
	}
	m.records[book.ID] = book
	m.order = append(m.order, book.ID)
	return book.ID, nil
}

// Delete removes the record with id
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	defer m.enter()()
	if err := m.sleep(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Deletes++
	if err := m.DeleteErr[id]; err != nil {
		return err
	}

	delete(m.records, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// DeleteBlob records the deletion attempt for url
func (m *MemoryStore) DeleteBlob(ctx context.Context, url string) error {
	defer m.enter()()
	if err := m.sleep(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.BlobDeletes[url]++
	return m.BlobErr[url]
}

// Len returns the number of stored records
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// MaxInFlight returns the highest number of concurrent mutating calls seen
func (m *MemoryStore) MaxInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}

func (m *MemoryStore) enter() func() {
	m.mu.Lock()
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}
}

func (m *MemoryStore) sleep(ctx context.Context) error {
	if m.Delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(m.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
