package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/hypercar-hub/backend/internal/model/car"
)

func TestHubDeliversToAllSubscribers(t *testing.T) {
	hub := NewHub(4)
	first, cancelFirst := hub.Subscribe()
	defer cancelFirst()
	second, cancelSecond := hub.Subscribe()
	defer cancelSecond()

	hub.Publish(Event{Type: Created, Car: car.Car{ID: "a"}})

	for _, ch := range []<-chan Event{first, second} {
		select {
		case evt := <-ch:
			assert.Equal(t, Created, evt.Type)
			assert.Equal(t, "a", evt.Car.ID)
			assert.False(t, evt.Timestamp.IsZero())
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(1)
	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.Publish(Event{Type: Created, Car: car.Car{ID: "a"}})
	hub.Publish(Event{Type: Created, Car: car.Car{ID: "b"}})

	evt := <-ch
	assert.Equal(t, "a", evt.Car.ID)
	assert.Equal(t, uint64(1), hub.Dropped())
}

func TestHubCancelClosesAndUnregisters(t *testing.T) {
	hub := NewHub(0)
	ch, cancel := hub.Subscribe()
	require.Equal(t, 1, hub.Subscribers())

	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.Subscribers())

	hub.Publish(Event{Type: Deleted})
}
