package ws

import "sync"

// Hub is the connection registry: it tracks which live connections are
// subscribed to which quiz session. The outer lock only guards the quiz
// map; each quiz keeps its own lock, so join/leave and fan-out on one quiz
// do not serialize against unrelated quizzes.
type Hub struct {
	mu      sync.RWMutex
	quizzes map[string]*subscriberSet
}

type subscriberSet struct {
	mu      sync.Mutex
	peers   map[Peer]struct{}
	retired bool
}

func NewHub() *Hub {
	return &Hub{quizzes: make(map[string]*subscriberSet)}
}

// Register adds the connection to the quiz's subscriber set, creating the
// set for the first subscriber.
func (h *Hub) Register(quizID string, p Peer) {
	for {
		h.mu.Lock()
		set, ok := h.quizzes[quizID]
		if !ok {
			set = &subscriberSet{peers: make(map[Peer]struct{})}
			h.quizzes[quizID] = set
		}
		h.mu.Unlock()

		if set.add(p) {
			return
		}
		// The set was retired between lookup and add; try again.
	}
}

// Unregister removes the connection, idempotently. The quiz's set is
// dropped entirely once empty to bound memory.
func (h *Hub) Unregister(quizID string, p Peer) {
	h.mu.RLock()
	set := h.quizzes[quizID]
	h.mu.RUnlock()
	if set == nil {
		return
	}

	if set.remove(p) {
		h.mu.Lock()
		if h.quizzes[quizID] == set && set.retire() {
			delete(h.quizzes, quizID)
		}
		h.mu.Unlock()
	}
}

// Subscribers returns a snapshot safe to iterate during fan-out.
func (h *Hub) Subscribers(quizID string) []Peer {
	h.mu.RLock()
	set := h.quizzes[quizID]
	h.mu.RUnlock()
	if set == nil {
		return nil
	}
	return set.snapshot()
}

func (h *Hub) Count(quizID string) int {
	return len(h.Subscribers(quizID))
}

func (s *subscriberSet) add(p Peer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.retired {
		return false
	}
	s.peers[p] = struct{}{}
	return true
}

// remove reports whether the set is now empty.
func (s *subscriberSet) remove(p Peer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.peers, p)
	return len(s.peers) == 0
}

// retire marks the set unusable if still empty, so a racing Register
// re-creates a fresh set instead of joining a deleted one.
func (s *subscriberSet) retire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.peers) > 0 {
		return false
	}
	s.retired = true
	return true
}

func (s *subscriberSet) snapshot() []Peer {
	s.mu.Lock()
	defer s.mu.Unlock()
	peers := make([]Peer, 0, len(s.peers))
	for p := range s.peers {
		peers = append(peers, p)
	}
	return peers
}
