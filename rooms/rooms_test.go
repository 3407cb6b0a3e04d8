package rooms_test

import (
	"context"
	"testing"
	"time"

	"worksite/event"
	"worksite/rooms"

	. "github.com/onsi/gomega"
)

func TestPublish(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should deliver only to subscribers of the room", func(t *testing.T) {
		b := rooms.NewBroadcaster()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		projectCh := b.Subscribe(ctx, []string{rooms.ProjectRoom(100)})
		otherCh := b.Subscribe(ctx, []string{rooms.ProjectRoom(200)})

		b.Publish(rooms.ProjectRoom(100), "nc:created", map[string]string{"ncId": "1"})

		var msg rooms.Message
		Eventually(projectCh).Should(Receive(&msg))
		Expect(msg.Room).To(Equal("project:100"))
		Expect(msg.Event).To(Equal("nc:created"))
		Consistently(otherCh).ShouldNot(Receive())
	})

	t.Run("one subscriber may join several rooms", func(t *testing.T) {
		b := rooms.NewBroadcaster()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ch := b.Subscribe(ctx, []string{rooms.ProjectRoom(100), rooms.UserRoom(30)})

		b.Publish(rooms.ProjectRoom(100), "a", nil)
		b.Publish(rooms.UserRoom(30), "b", nil)

		Eventually(ch).Should(Receive())
		Eventually(ch).Should(Receive())
	})

	t.Run("a slow subscriber loses messages instead of blocking the publisher", func(t *testing.T) {
		b := rooms.NewBroadcaster()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ch := b.Subscribe(ctx, []string{rooms.ProjectRoom(100)})

		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 0; i < 100; i++ {
				b.Publish(rooms.ProjectRoom(100), "flood", i)
			}
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("publisher blocked on a slow subscriber")
		}

		received := 0
		for {
			select {
			case <-ch:
				received++
				continue
			default:
			}
			break
		}
		Expect(received).To(BeNumerically("<=", 16))
		Expect(received).To(BeNumerically(">", 0))
	})

	t.Run("subscription ends with its context", func(t *testing.T) {
		b := rooms.NewBroadcaster()
		ctx, cancel := context.WithCancel(context.Background())

		ch := b.Subscribe(ctx, []string{rooms.ProjectRoom(100)})
		Expect(b.SubscriberCount(rooms.ProjectRoom(100))).To(Equal(1))

		cancel()
		Eventually(ch).Should(BeClosed())
		Eventually(func() int { return b.SubscriberCount(rooms.ProjectRoom(100)) }).Should(BeZero())
	})
}

func TestAsEventHandler(t *testing.T) {
	RegisterTestingT(t)

	t.Run("project scoped events reach the project room", func(t *testing.T) {
		b := rooms.NewBroadcaster()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ch := b.Subscribe(ctx, []string{rooms.ProjectRoom(100)})
		handler := b.AsEventHandler()

		result := handler(&event.EventRecord{Event: event.Event{
			Name: event.EventNcCreated, SourceType: "nc", SourceID: 501, ProjectID: 100}})
		Expect(result).ToNot(BeNil())
		Expect(result.Success).To(BeTrue())

		var msg rooms.Message
		Eventually(ch).Should(Receive(&msg))
		Expect(msg.Event).To(Equal(event.EventNcCreated))
	})

	t.Run("events without project scope are not handled", func(t *testing.T) {
		b := rooms.NewBroadcaster()
		handler := b.AsEventHandler()
		Expect(handler(&event.EventRecord{Event: event.Event{Name: "x"}})).To(BeNil())
	})
}
