package bus

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/key-value/banktransfer/internal/domain"
)

// subscription is one subscriber's unbounded FIFO delivery queue.
// enqueue never blocks, so a handler that sends follow-up commands (and thereby
// publishes more events) cannot deadlock against its own queue.
type subscription struct {
	name     string
	sub      Subscriber
	inFlight *sync.WaitGroup
	log      zerolog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []domain.Event
	stopped bool
}

func newSubscription(name string, sub Subscriber, inFlight *sync.WaitGroup, log zerolog.Logger) *subscription {
	s := &subscription{
		name:     name,
		sub:      sub,
		inFlight: inFlight,
		log:      log.With().Str("subscriber", name).Logger(),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *subscription) enqueue(evt domain.Event) {
	s.mu.Lock()
	s.queue = append(s.queue, evt)
	s.mu.Unlock()
	s.cond.Signal()
}

func (s *subscription) stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.cond.Signal()
}

// run delivers queued events one at a time until stopped
func (s *subscription) run() {
	ctx := context.Background()
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.stopped {
			s.cond.Wait()
		}
		if s.stopped && len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		evt := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		s.deliver(ctx, evt)
		s.inFlight.Done()
	}
}

func (s *subscription) deliver(ctx context.Context, evt domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Str("event", evt.EventType()).
				Msg("subscriber panicked handling event")
		}
	}()
	s.sub.HandleEvent(ctx, evt)
}
