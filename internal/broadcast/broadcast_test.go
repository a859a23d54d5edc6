package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, topic string, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	return r.err
}

func TestTopicHelpers(t *testing.T) {
	assert.Equal(t, "ride.abc", RideTopic("abc"))
	assert.Equal(t, "user.u1", UserTopic("u1"))
}

func TestFanoutPublishesToAll(t *testing.T) {
	a := &recordingPublisher{}
	b := &recordingPublisher{err: errors.New("broker down")}
	c := &recordingPublisher{}

	f := Fanout{a, b, c}
	err := f.Publish(context.Background(), TopicDrivers, RideEvent{Type: EventRideRequested})

	assert.EqualError(t, err, "broker down")
	assert.Equal(t, []string{TopicDrivers}, a.topics)
	assert.Equal(t, []string{TopicDrivers}, b.topics)
	assert.Equal(t, []string{TopicDrivers}, c.topics)
}

func TestNewRideEvent(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ride := &domain.Ride{
		ID:            "r1",
		PassengerID:   "p1",
		DriverID:      "d1",
		Status:        domain.RideStatusAccepted,
		Origin:        domain.LatLng{Lat: 33.89, Lng: 35.50},
		EstimatedFare: 12.5,
	}

	ev := NewRideEvent(EventRideAccepted, ride, now)

	assert.Equal(t, EventRideAccepted, ev.Type)
	assert.Equal(t, "r1", ev.RideID)
	assert.Equal(t, "ACCEPTED", ev.Status)
	assert.Equal(t, "d1", ev.DriverID)
	assert.Equal(t, 33.89, ev.OriginLat)
	assert.Equal(t, now, ev.Timestamp)
}
