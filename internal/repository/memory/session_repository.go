package memory

import (
	"time"

	"ai-chatbot-be/pkg/dialogue"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps dialogue sessions in process memory. Abandoned
// sessions expire after the TTL; a restart forgets all of them.
type SessionRepository struct {
	cache *cache.Cache
}

var _ dialogue.SessionStore = &SessionRepository{}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (r *SessionRepository) Save(session *dialogue.Session) {
	r.cache.Set(session.UserID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(userID string) (*dialogue.Session, bool) {
	if x, found := r.cache.Get(userID); found {
		return x.(*dialogue.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(userID string) bool {
	_, found := r.cache.Get(userID)
	r.cache.Delete(userID)
	return found
}

// Count is the number of live sessions, expired ones included until the next sweep.
func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
