package notification

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"

	"shopfloor-backend/internal/model"
)

// mockSender is a mock implementation of the NotificationSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

// mockStore is an in-memory SubscriptionStore.
type mockStore struct {
	mu            sync.Mutex
	subscriptions map[string][]model.PushSubscription
	deleted       []string
	err           error
}

func (m *mockStore) SubscriptionsForEquipment(_ context.Context, equipment string) ([]model.PushSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.subscriptions[equipment], nil
}

func (m *mockStore) DeleteSubscription(_ context.Context, endpoint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, endpoint)
	return nil
}

func (m *mockStore) deletedEndpoints() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

func pushResponse(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString("")),
	}
}

func TestWorkerPool_Dispatch(t *testing.T) {
	wp := NewWorkerPool(1, &mockStore{}, &webpush.Options{})

	wp.Dispatch(RunCompleted{EquipmentNumber: "CNC-7", Duration: time.Hour})

	select {
	case job := <-wp.jobs:
		assert.Equal(t, "CNC-7", job.EquipmentNumber)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_DispatchNeverBlocks(t *testing.T) {
	wp := NewWorkerPool(1, &mockStore{}, &webpush.Options{})

	// Queue capacity is the pool size; extra jobs are dropped, not queued.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			wp.Dispatch(RunCompleted{EquipmentNumber: "CNC-7"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Dispatch blocked on a full queue")
	}
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	store := &mockStore{
		subscriptions: map[string][]model.PushSubscription{
			"CNC-7": {{Endpoint: "https://example.com/push", P256DH: "p", Auth: "a"}},
			"VTL-2": {{Endpoint: "https://example.com/expired", P256DH: "p", Auth: "a"}},
		},
	}

	wp := NewWorkerPool(1, store, &webpush.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	t.Run("sends run-completed notification", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				defer wg.Done()
				assert.Equal(t, "https://example.com/push", sub.Endpoint)
				assert.Equal(t, "Equipment CNC-7 finished a run (45m0s)", string(payload))
				return pushResponse(http.StatusCreated), nil
			},
		}

		wp.Dispatch(RunCompleted{EquipmentNumber: "CNC-7", Duration: 45 * time.Minute})
		wg.Wait()
	})

	t.Run("deletes expired subscription on 410", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				defer wg.Done()
				return pushResponse(http.StatusGone), nil
			},
		}

		wp.Dispatch(RunCompleted{EquipmentNumber: "VTL-2", Duration: time.Minute})
		wg.Wait()

		assert.Eventually(t, func() bool {
			deleted := store.deletedEndpoints()
			return len(deleted) == 1 && deleted[0] == "https://example.com/expired"
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("send error is logged and swallowed", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				defer wg.Done()
				return nil, errors.New("push service down")
			},
		}

		wp.Dispatch(RunCompleted{EquipmentNumber: "CNC-7", Duration: time.Minute})
		wg.Wait()
	})
}
