package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tradequote_backend/platform/logger"
)

type testEvent struct {
	BaseEvent
	payload string
}

func (e testEvent) EventName() string { return "test.event" }

func TestInMemoryBus_PublishReachesAllSubscribers(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	var mu sync.Mutex
	var got []string
	done := make(chan struct{}, 2)

	for i := 0; i < 2; i++ {
		bus.Subscribe("test.event", HandlerFunc(func(_ context.Context, e Event) error {
			mu.Lock()
			got = append(got, e.(testEvent).payload)
			mu.Unlock()
			done <- struct{}{}
			return nil
		}))
	}

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), payload: "hello"})

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("handler was not invoked")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(got))
	}
}

func TestInMemoryBus_PublishSyncReturnsFirstHandlerError(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	boom := errors.New("handler failed")
	bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error {
		return boom
	}))

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent()})
	if !errors.Is(err, boom) {
		t.Fatalf("expected handler error, got %v", err)
	}
}

func TestInMemoryBus_UnsubscribedEventIsIgnored(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	if err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent()}); err != nil {
		t.Fatalf("expected no error without subscribers, got %v", err)
	}
}

func TestInMemoryBus_PanickingHandlerDoesNotCrashPublisher(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	done := make(chan struct{})
	bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error {
		defer close(done)
		panic("boom")
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent()})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}
}
