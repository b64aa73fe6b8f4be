package store

import "github.com/civiz/civiz/internal/domain"

// EventType identifies a vision lifecycle change emitted by the store.
type EventType string

const (
	EventVisionSubmitted EventType = "vision_submitted"
	EventVisionReady     EventType = "vision_ready"
	EventVisionFailed    EventType = "vision_failed"
	EventVisionLiked     EventType = "vision_liked"
)

// Event carries a snapshot of the affected vision at the moment of the
// change. Snapshots are copies; receivers may hold them indefinitely.
type Event struct {
	Type   EventType
	Vision domain.Vision
}

// subscriberBuffer is the channel depth per subscriber. Delivery is
// best-effort: a subscriber that falls this far behind starts dropping
// events rather than blocking store mutations.
const subscriberBuffer = 16

// Subscribe registers an in-process listener for store events.
// Parameters: none.
// Returns:
//   - <-chan Event: channel receiving lifecycle events.
//   - func(): cancel function; closes the channel and stops delivery.
func (s *VisionStore) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if existing, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(existing)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// notify fans an event out to all subscribers without blocking. Sends happen
// under the store mutex so a concurrent cancel cannot close a channel
// mid-send; the sends themselves never block.
// Callers must not hold the store mutex.
func (s *VisionStore) notify(eventType EventType, snapshot *domain.Vision) {
	if snapshot == nil {
		return
	}

	ev := Event{Type: eventType, Vision: *snapshot}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			// Slow subscriber; drop rather than stall the store.
		}
	}
}
