package media

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps generated binaries in memory for the process lifetime. It is
// the server-side counterpart of the browser object URLs the studio used to
// hand out: a blob goes in, an addressable id comes out.
type Blob struct {
	Data      []byte
	MimeType  string
	CreatedAt time.Time
}

type Store struct {
	mu    sync.Mutex
	blobs map[string]Blob
}

func NewStore() *Store {
	return &Store{blobs: make(map[string]Blob)}
}

func (s *Store) Put(data []byte, mimeType string) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.blobs[id] = Blob{
		Data:      data,
		MimeType:  mimeType,
		CreatedAt: time.Now(),
	}
	return id
}

func (s *Store) Get(id string) (Blob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, ok := s.blobs[id]
	return blob, ok
}

func URL(id string) string {
	return "/media/" + id
}
