package rooms

import (
	"context"
	"sync"

	"worksite/event"

	"github.com/fundwit/go-commons/types"
)

// ActiveBroadcaster is the process-wide room broadcaster, assigned once at
// startup and read thereafter.
var ActiveBroadcaster *Broadcaster

func ProjectRoom(id types.ID) string {
	return "project:" + id.String()
}

func UserRoom(id types.ID) string {
	return "user:" + id.String()
}

// Message is one realtime event delivered to subscribers of a room.
type Message struct {
	Room    string      `json:"room"`
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

type subscriber struct {
	ch    chan Message
	rooms map[string]bool
}

// Broadcaster fans typed domain events out to whoever is currently
// subscribed to the named rooms. Delivery is at-most-once: there is no
// queueing and no replay for observers that (re)connect later, and slow
// subscribers drop messages rather than blocking the publisher.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[int]*subscriber
	next int
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: map[int]*subscriber{}}
}

// Subscribe registers an observer for the given rooms and returns the
// channel messages arrive on. The channel closes when ctx ends.
func (b *Broadcaster) Subscribe(ctx context.Context, roomNames []string) <-chan Message {
	sub := &subscriber{ch: make(chan Message, 16), rooms: map[string]bool{}}
	for _, r := range roomNames {
		if r != "" {
			sub.rooms[r] = true
		}
	}

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = sub
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		close(sub.ch)
		b.mu.Unlock()
	}()

	return sub.ch
}

// Publish delivers to current subscribers of the room. Fire-and-forget:
// it never returns an error and never retries.
func (b *Broadcaster) Publish(room, eventName string, payload interface{}) {
	msg := Message{Room: room, Event: eventName, Payload: payload}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if !sub.rooms[room] {
			continue
		}
		select {
		case sub.ch <- msg:
		default:
			// drop when the subscriber is slow to avoid blocking
		}
	}
}

// SubscriberCount reports how many observers a room currently has.
func (b *Broadcaster) SubscriberCount(room string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, sub := range b.subs {
		if sub.rooms[room] {
			n++
		}
	}
	return n
}

// AsEventHandler adapts the broadcaster into a domain event handler:
// project-scoped events reach the project room after the write committed.
// User-addressed delivery is the notification handler's concern.
func (b *Broadcaster) AsEventHandler() event.EventHandler {
	return func(r *event.EventRecord) *event.EventHandleResult {
		if r.ProjectID.IsZero() {
			return nil
		}
		payload := map[string]interface{}{
			"sourceType": r.SourceType,
			"sourceId":   r.SourceID.String(),
			"payload":    map[string]interface{}(r.Payload),
		}
		b.Publish(ProjectRoom(r.ProjectID), r.Name, payload)
		return &event.EventHandleResult{Success: true, HandlerIdentifier: "rooms-forwarder"}
	}
}
