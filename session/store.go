package session

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// Store holds live sessions keyed by their cookie ID. Sessions expire
// after sitting idle for the configured TTL and are pruned periodically.
type Store struct {
	sessions sync.Map // id (string) -> *Session
	ttl      time.Duration
	done     chan struct{}
}

// NewStore creates a Store with the given idle TTL and starts a
// background goroutine that prunes expired sessions every ten minutes.
func NewStore(ttl time.Duration) *Store {
	st := &Store{
		ttl:  ttl,
		done: make(chan struct{}),
	}
	go st.cleanupLoop()
	return st
}

// Get returns the session for an ID, or false if unknown or expired.
// A hit refreshes the idle timer.
func (st *Store) Get(id string) (*Session, bool) {
	val, ok := st.sessions.Load(id)
	if !ok {
		return nil, false
	}
	sess := val.(*Session)
	if time.Since(sess.idleSince()) > st.ttl {
		st.sessions.Delete(id)
		return nil, false
	}
	sess.touch()
	return sess, true
}

// GetOrCreate returns the session for an ID, minting a fresh one when
// the ID is empty, unknown or expired.
func (st *Store) GetOrCreate(id string) *Session {
	if id != "" {
		if sess, ok := st.Get(id); ok {
			return sess
		}
	}
	sess := newSession(newSessionID())
	st.sessions.Store(sess.ID, sess)
	return sess
}

// Stop terminates the background cleanup goroutine.
func (st *Store) Stop() {
	close(st.done)
}

func (st *Store) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-st.done:
			return
		case <-ticker.C:
			now := time.Now()
			st.sessions.Range(func(key, value any) bool {
				sess := value.(*Session)
				if now.Sub(sess.idleSince()) > st.ttl {
					st.sessions.Delete(key)
				}
				return true
			})
		}
	}
}

func newSessionID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		panic(err)
	}
	return hex.EncodeToString(buf)
}
