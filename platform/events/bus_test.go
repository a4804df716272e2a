package events

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type testEvent struct {
	BaseEvent
	name string
}

func (e testEvent) EventName() string { return e.name }

func TestPublishSyncDeliversToAllSubscribers(t *testing.T) {
	bus := NewInMemoryBus(nil)

	var calls []string
	bus.Subscribe("thing.happened", HandlerFunc(func(ctx context.Context, event Event) error {
		calls = append(calls, "first")
		return nil
	}))
	bus.Subscribe("thing.happened", HandlerFunc(func(ctx context.Context, event Event) error {
		calls = append(calls, "second")
		return nil
	}))
	bus.Subscribe("other.happened", HandlerFunc(func(ctx context.Context, event Event) error {
		calls = append(calls, "unrelated")
		return nil
	}))

	err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent(), "thing.happened"})
	if err != nil {
		t.Fatalf("PublishSync returned error: %v", err)
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Errorf("got calls %v, want [first second]", calls)
	}
}

func TestPublishSyncAggregatesHandlerErrors(t *testing.T) {
	bus := NewInMemoryBus(nil)

	bus.Subscribe("thing.happened", HandlerFunc(func(ctx context.Context, event Event) error {
		return errors.New("handler one broke")
	}))
	bus.Subscribe("thing.happened", HandlerFunc(func(ctx context.Context, event Event) error {
		return nil
	}))
	bus.Subscribe("thing.happened", HandlerFunc(func(ctx context.Context, event Event) error {
		return errors.New("handler three broke")
	}))

	err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent(), "thing.happened"})
	if err == nil {
		t.Fatal("expected an aggregated error")
	}
	if !strings.Contains(err.Error(), "handler one broke") || !strings.Contains(err.Error(), "handler three broke") {
		t.Errorf("aggregated error missing handler failures: %v", err)
	}
}

func TestPublishSyncRecoversHandlerPanic(t *testing.T) {
	bus := NewInMemoryBus(nil)

	var secondRan bool
	bus.Subscribe("thing.happened", HandlerFunc(func(ctx context.Context, event Event) error {
		panic("boom")
	}))
	bus.Subscribe("thing.happened", HandlerFunc(func(ctx context.Context, event Event) error {
		secondRan = true
		return nil
	}))

	err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent(), "thing.happened"})
	if err == nil {
		t.Fatal("expected the panic to surface as an error")
	}
	if !secondRan {
		t.Error("panic in one handler should not stop the others")
	}
}

func TestPublishRunsHandlersAsynchronously(t *testing.T) {
	bus := NewInMemoryBus(nil)

	var wg sync.WaitGroup
	wg.Add(2)
	bus.Subscribe("thing.happened", HandlerFunc(func(ctx context.Context, event Event) error {
		wg.Done()
		return nil
	}))
	bus.Subscribe("thing.happened", HandlerFunc(func(ctx context.Context, event Event) error {
		wg.Done()
		return nil
	}))

	bus.Publish(context.Background(), testEvent{NewBaseEvent(), "thing.happened"})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handlers did not run")
	}
}

func TestPublishSurvivesCallerCancellation(t *testing.T) {
	bus := NewInMemoryBus(nil)

	handlerErr := make(chan error, 1)
	started := make(chan struct{})
	bus.Subscribe("thing.happened", HandlerFunc(func(ctx context.Context, event Event) error {
		close(started)
		select {
		case <-ctx.Done():
			handlerErr <- ctx.Err()
		case <-time.After(100 * time.Millisecond):
			handlerErr <- ctx.Err()
		}
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, testEvent{NewBaseEvent(), "thing.happened"})
	<-started
	cancel()

	select {
	case err := <-handlerErr:
		if err != nil {
			t.Fatalf("async handler saw cancelled context: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not finish")
	}
}

func TestPublishSyncNoSubscribersIsNoop(t *testing.T) {
	bus := NewInMemoryBus(nil)
	if err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent(), "nobody.listening"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
