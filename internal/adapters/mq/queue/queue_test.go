package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/motion/internal/domain/model"
)

func testJob(id string) Job {
	return Job{ID: id, Action: model.NewAction([]model.DataPoint{{Velocity: 1}})}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if c := q.Cap(); c != 2 {
		t.Errorf("expected capacity 2, got %d", c)
	}

	if err := q.Enqueue(ctx, testJob("job1")); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}
	if l := q.Len(); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	job := <-q.Dequeue()
	if job.ID != "job1" {
		t.Errorf("expected job1, got %v", job.ID)
	}
	if job.Enqueued.IsZero() {
		t.Error("expected enqueue time to be stamped")
	}
	if job.Action.Len() != 1 {
		t.Errorf("expected action to travel with the job, got %d samples", job.Action.Len())
	}
	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	for _, id := range []string{"job1", "job2"} {
		if err := q.Enqueue(ctx, testJob(id)); err != nil {
			t.Fatalf("expected enqueue of %s to succeed, got %v", id, err)
		}
	}
	if err := q.Enqueue(ctx, testJob("job3")); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}

	<-q.Dequeue()
	if err := q.Enqueue(ctx, testJob("job3")); err != nil {
		t.Errorf("expected room after dequeue, got %v", err)
	}
}

func TestInMemoryQueue_FIFO(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := q.Enqueue(ctx, testJob(fmt.Sprintf("job%d", i))); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 5; i++ {
		if got, want := (<-q.Dequeue()).ID, fmt.Sprintf("job%d", i); got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	if err := q.Enqueue(ctx, testJob("queued")); err != nil {
		t.Fatal(err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if err := q.Enqueue(ctx, testJob("late")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	var drained []string
	for job := range q.Dequeue() {
		drained = append(drained, job.ID)
	}
	if len(drained) != 1 || drained[0] != "queued" {
		t.Errorf("expected queued job to drain after close, got %v", drained)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Enqueue(ctx, testJob("job")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if q.Len() != 0 {
		t.Error("cancelled enqueue must not queue the job")
	}
}

func TestInMemoryQueue_ConcurrentProducers(t *testing.T) {
	const producers, per = 8, 50
	q := NewInMemoryQueue(WithCapacity(producers * per))
	ctx := context.Background()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < per; i++ {
				if err := q.Enqueue(ctx, testJob(fmt.Sprintf("p%d-%d", p, i))); err != nil {
					t.Errorf("enqueue: %v", err)
				}
			}
		}(p)
	}
	wg.Wait()

	if l := q.Len(); l != producers*per {
		t.Errorf("expected %d queued jobs, got %d", producers*per, l)
	}
}
