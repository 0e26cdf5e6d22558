package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/mmcdole/cinelist/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketCollections = []byte("collections")
	bucketDetails     = []byte("details")
)

// Top-level keys of the collections bucket. The name sequence and the
// mapping are persisted as separate entries.
const (
	keyListNames = "listNames"
	keyLists     = "lists"
)

const dbFileName = "cinelist.db"

// detailRecord wraps a MovieDetail with its fetch time for JSON serialization
type detailRecord struct {
	Detail    *domain.MovieDetail `json:"detail"`
	FetchedAt int64               `json:"fetched_at"`
}

// CollectionStore implements domain.CollectionStore and domain.DetailCache using BoltDB.
// Collection state is read once at open and kept in memory; every mutation
// writes through synchronously.
type CollectionStore struct {
	db *bolt.DB
	mu sync.RWMutex

	names []string
	lists map[string][]domain.MovieStub

	// In-memory cache for detail reads (promoted on access)
	details map[string][]byte
}

// NewMemoryStore returns a store without persistence
func NewMemoryStore() *CollectionStore {
	return &CollectionStore{
		lists:   make(map[string][]domain.MovieStub),
		details: make(map[string][]byte),
	}
}

// Open opens (or creates) the store under dir and rehydrates collection state.
// An empty dir yields a memory-only store.
func Open(dir string) (*CollectionStore, error) {
	if dir == "" {
		return NewMemoryStore(), nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFileName)
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketCollections, bucketDetails} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &CollectionStore{db: db, details: make(map[string][]byte)}
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *CollectionStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// load reads both collection entries and restores the lockstep invariant
// between the name sequence and the mapping.
func (s *CollectionStore) load() error {
	var names []string
	lists := make(map[string][]domain.MovieStub)

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCollections)
		if v := b.Get([]byte(keyListNames)); v != nil {
			if err := json.Unmarshal(v, &names); err != nil {
				return fmt.Errorf("failed to decode %s: %w", keyListNames, err)
			}
		}
		if v := b.Get([]byte(keyLists)); v != nil {
			if err := json.Unmarshal(v, &lists); err != nil {
				return fmt.Errorf("failed to decode %s: %w", keyLists, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.names, s.lists = reconcile(names, lists)
	return nil
}

// reconcile drops duplicate names, gives every name an entry and appends
// orphaned mapping keys (sorted) to the sequence.
func reconcile(names []string, lists map[string][]domain.MovieStub) ([]string, map[string][]domain.MovieStub) {
	if lists == nil {
		lists = make(map[string][]domain.MovieStub)
	}
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
		if _, ok := lists[name]; !ok {
			lists[name] = []domain.MovieStub{}
		}
	}

	var orphans []string
	for name := range lists {
		if !seen[name] {
			orphans = append(orphans, name)
		}
	}
	sort.Strings(orphans)
	return append(out, orphans...), lists
}

// persist writes both collection entries in one transaction
func (s *CollectionStore) persist(names []string, lists map[string][]domain.MovieStub) error {
	if s.db == nil {
		return nil // Memory-only mode
	}

	namesData, err := json.Marshal(names)
	if err != nil {
		return err
	}
	listsData, err := json.Marshal(lists)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCollections)
		if err := b.Put([]byte(keyListNames), namesData); err != nil {
			return err
		}
		return b.Put([]byte(keyLists), listsData)
	})
}

// === Collections ===

func (s *CollectionStore) ListNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.names)
}

func (s *CollectionStore) GetList(name string) []domain.MovieStub {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.lists[name])
}

func (s *CollectionStore) HasList(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.lists[name]
	return ok
}

func (s *CollectionStore) SetList(name string, stubs []domain.MovieStub) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := s.names
	if _, ok := s.lists[name]; !ok {
		names = append(slices.Clone(s.names), name)
	}
	lists := s.copyLists()
	if stubs == nil {
		stubs = []domain.MovieStub{}
	}
	lists[name] = slices.Clone(stubs)

	if err := s.persist(names, lists); err != nil {
		return fmt.Errorf("failed to save list %q: %w", name, err)
	}
	s.names, s.lists = names, lists
	return nil
}

func (s *CollectionStore) RemoveList(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lists[name]; !ok {
		return nil
	}

	names := slices.DeleteFunc(slices.Clone(s.names), func(n string) bool { return n == name })
	lists := s.copyLists()
	delete(lists, name)

	if err := s.persist(names, lists); err != nil {
		return fmt.Errorf("failed to remove list %q: %w", name, err)
	}
	s.names, s.lists = names, lists
	return nil
}

func (s *CollectionStore) Collection() domain.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Collection{Names: slices.Clone(s.names), Lists: s.copyLists()}
}

// copyLists clones the mapping. Callers must hold mu.
func (s *CollectionStore) copyLists() map[string][]domain.MovieStub {
	lists := make(map[string][]domain.MovieStub, len(s.lists))
	for name, stubs := range s.lists {
		lists[name] = slices.Clone(stubs)
	}
	return lists
}

// === Details (implements domain.DetailCache) ===

func detailKey(id int) string {
	return "movie:" + strconv.Itoa(id)
}

func (s *CollectionStore) GetDetail(id int) (*domain.MovieDetail, time.Time, bool) {
	key := detailKey(id)

	// Check memory cache first
	s.mu.RLock()
	data, ok := s.details[key]
	s.mu.RUnlock()

	if !ok {
		if s.db == nil {
			return nil, time.Time{}, false
		}

		// Read from BoltDB
		s.db.View(func(tx *bolt.Tx) error {
			if v := tx.Bucket(bucketDetails).Get([]byte(key)); v != nil {
				data = make([]byte, len(v))
				copy(data, v)
			}
			return nil
		})
		if data == nil {
			return nil, time.Time{}, false
		}

		// Promote to memory cache
		s.mu.Lock()
		s.details[key] = data
		s.mu.Unlock()
	}

	var rec detailRecord
	if err := json.Unmarshal(data, &rec); err != nil || rec.Detail == nil {
		return nil, time.Time{}, false
	}
	return rec.Detail, time.Unix(rec.FetchedAt, 0), true
}

func (s *CollectionStore) SaveDetail(detail *domain.MovieDetail, fetchedAt time.Time) error {
	data, err := json.Marshal(detailRecord{Detail: detail, FetchedAt: fetchedAt.Unix()})
	if err != nil {
		return err
	}
	key := detailKey(detail.ID)

	s.mu.Lock()
	s.details[key] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDetails).Put([]byte(key), data)
	})
}

// InvalidateDetails wipes every cached detail record
func (s *CollectionStore) InvalidateDetails() {
	s.mu.Lock()
	s.details = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketDetails); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketDetails)
		return err
	})
}
