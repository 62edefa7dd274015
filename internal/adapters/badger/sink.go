// Package badger persists thumbnails to an embedded Badger database.
package badger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/fxamacker/cbor/v2"

	"github.com/bft-labs/thumbship/internal/domain"
)

const (
	// Scheme prefixes a sink location, e.g. badger:///var/lib/thumbship.
	Scheme = "badger://"

	keyPrefix = "image/"
)

// ErrNotOpen is returned by BulkInsert before Open or after Close.
var ErrNotOpen = errors.New("badger sink is not open")

// IsURI reports whether uri names a Badger directory.
func IsURI(uri string) bool {
	return strings.HasPrefix(uri, Scheme)
}

// DirFromURI strips the scheme from a badger:// location.
func DirFromURI(uri string) (string, error) {
	dir := strings.TrimPrefix(uri, Scheme)
	if !IsURI(uri) || dir == "" {
		return "", fmt.Errorf("invalid badger location %q", uri)
	}
	return dir, nil
}

// document is the stored value, keyed by id.
type document struct {
	Index     int       `cbor:"1,keyasint"`
	Thumbnail []byte    `cbor:"2,keyasint"`
	CreatedAt time.Time `cbor:"3,keyasint"`
}

// Sink implements ports.PersistenceSink. Each record is written in its own
// transaction so a duplicate or conflicting id rejects only that record.
type Sink struct {
	dir string

	mu sync.RWMutex
	db *badger.DB
}

// NewSink creates a sink stored under dir.
func NewSink(dir string) *Sink {
	return &Sink{dir: dir}
}

func (s *Sink) Open(context.Context) error {
	db, err := badger.Open(badger.DefaultOptions(s.dir).WithLogger(nil))
	if err != nil {
		return fmt.Errorf("open badger at %s: %w", s.dir, err)
	}
	s.mu.Lock()
	s.db = db
	s.mu.Unlock()
	return nil
}

func (s *Sink) BulkInsert(ctx context.Context, records []domain.PersistableImage) (domain.InsertResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return domain.InsertResult{}, ErrNotOpen
	}

	var result domain.InsertResult
	now := time.Now().UTC()
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		err := s.insert(r, now)
		if err == nil {
			result.Inserted++
			continue
		}
		result.Failures = append(result.Failures, domain.RecordFailure{ID: r.ID, Index: r.Index, Err: err})
	}
	return result, nil
}

func (s *Sink) insert(r domain.PersistableImage, now time.Time) error {
	val, err := cbor.Marshal(document{Index: r.Index, Thumbnail: r.Thumbnail, CreatedAt: now})
	if err != nil {
		return fmt.Errorf("%w: encode: %v", domain.ErrPersistRecord, err)
	}
	key := []byte(keyPrefix + r.ID)

	err = s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return fmt.Errorf("%w: id %q already exists", domain.ErrDuplicateRecord, r.ID)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, val)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrPersistRecord):
		return err
	case errors.Is(err, badger.ErrConflict):
		// A concurrent batch wrote the same id first.
		return fmt.Errorf("%w: id %q written concurrently", domain.ErrDuplicateRecord, r.ID)
	default:
		return fmt.Errorf("%w: %v", domain.ErrPersistRecord, err)
	}
}

// Lookup returns the stored record for id.
func (s *Sink) Lookup(id string) (domain.PersistableImage, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return domain.PersistableImage{}, false, ErrNotOpen
	}

	var doc document
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &doc)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.PersistableImage{}, false, nil
	}
	if err != nil {
		return domain.PersistableImage{}, false, err
	}
	return domain.PersistableImage{ID: id, Index: doc.Index, Thumbnail: doc.Thumbnail}, true, nil
}

func (s *Sink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
