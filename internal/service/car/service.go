package car

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zhouzirui/hypercar-hub/backend/internal/model/car"
	"github.com/zhouzirui/hypercar-hub/backend/internal/service/events"
)

// ErrNotFound is returned when no car carries the requested id.
var ErrNotFound = errors.New("car not found")

// Publisher receives a notification after every committed mutation.
type Publisher interface {
	Publish(evt events.Event)
}

// Option customises a Service.
type Option func(*Service)

// WithPublisher attaches a change-event sink.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSerializedWrites toggles the process-wide mutation lock.
func WithSerializedWrites(enabled bool) Option {
	return func(s *Service) { s.serialize = enabled }
}

// Service implements the car catalogue operations on top of a Store. Every
// call starts from a fresh Load; mutations finish with a single Save of the
// whole collection.
type Service struct {
	store     car.Store
	publisher Publisher
	logger    *zap.Logger
	serialize bool
	newID     func() string

	mu sync.Mutex
}

// NewService wires a Service to store. Writes are serialized by default.
func NewService(store car.Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		logger:    zap.NewNop(),
		serialize: true,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the full collection in insertion order.
func (s *Service) List(ctx context.Context) ([]car.Car, error) {
	cars, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cars: %w", err)
	}
	return cars, nil
}

// Get returns the first car whose id matches exactly.
func (s *Service) Get(ctx context.Context, id string) (car.Car, error) {
	cars, err := s.store.Load(ctx)
	if err != nil {
		return car.Car{}, fmt.Errorf("load cars: %w", err)
	}
	i := car.Index(cars, id)
	if i < 0 {
		return car.Car{}, ErrNotFound
	}
	return cars[i], nil
}

// Create assigns a fresh id to draft and appends it.
func (s *Service) Create(ctx context.Context, draft car.Draft) (car.Car, error) {
	created, err := s.BulkCreate(ctx, []car.Draft{draft})
	if err != nil {
		return car.Car{}, err
	}
	return created[0], nil
}

// BulkCreate appends every draft in order, then saves once. Nothing is
// persisted if the load or the save fails.
func (s *Service) BulkCreate(ctx context.Context, drafts []car.Draft) ([]car.Car, error) {
	defer s.lock()()

	cars, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cars: %w", err)
	}

	created := make([]car.Car, 0, len(drafts))
	for _, draft := range drafts {
		c := draft.WithID(s.newID())
		cars = append(cars, c)
		created = append(created, c)
	}

	if err := s.store.Save(ctx, cars); err != nil {
		return nil, fmt.Errorf("save cars: %w", err)
	}

	for _, c := range created {
		s.logger.Debug("car created", zap.String("id", c.ID))
		s.publish(events.Created, c)
	}
	return created, nil
}

// Update replaces the car stored under id wholesale, keeping id.
func (s *Service) Update(ctx context.Context, id string, replacement car.Draft) (car.Car, error) {
	defer s.lock()()

	cars, err := s.store.Load(ctx)
	if err != nil {
		return car.Car{}, fmt.Errorf("load cars: %w", err)
	}
	i := car.Index(cars, id)
	if i < 0 {
		return car.Car{}, ErrNotFound
	}

	updated := replacement.WithID(id)
	cars[i] = updated
	if err := s.store.Save(ctx, cars); err != nil {
		return car.Car{}, fmt.Errorf("save cars: %w", err)
	}

	s.logger.Debug("car updated", zap.String("id", id))
	s.publish(events.Updated, updated)
	return updated, nil
}

// Delete removes the car stored under id.
func (s *Service) Delete(ctx context.Context, id string) error {
	defer s.lock()()

	cars, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load cars: %w", err)
	}
	i := car.Index(cars, id)
	if i < 0 {
		return ErrNotFound
	}

	removed := cars[i]
	cars = append(cars[:i], cars[i+1:]...)
	if err := s.store.Save(ctx, cars); err != nil {
		return fmt.Errorf("save cars: %w", err)
	}

	s.logger.Debug("car deleted", zap.String("id", id))
	s.publish(events.Deleted, removed)
	return nil
}

func (s *Service) lock() func() {
	if !s.serialize {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Service) publish(t events.Type, c car.Car) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(events.Event{Type: t, Car: c})
}
