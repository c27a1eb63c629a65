package sessions

import (
	"stop-sequencing-service/internal/services"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps planning sessions in process memory. Sessions expire
// after ttl without access.
type MemoryStore struct {
	c   *gocache.Cache
	ttl time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		c:   gocache.New(ttl, ttl/2),
		ttl: ttl,
	}
}

func (m *MemoryStore) Get(id string) (*services.Session, bool) {
	v, ok := m.c.Get(id)
	if !ok {
		return nil, false
	}
	s, ok := v.(*services.Session)
	return s, ok
}

// Put stores s and resets its expiry.
func (m *MemoryStore) Put(s *services.Session) {
	m.c.Set(s.ID, s, m.ttl)
}

func (m *MemoryStore) Delete(id string) {
	m.c.Delete(id)
}

func (m *MemoryStore) Count() int {
	return m.c.ItemCount()
}
