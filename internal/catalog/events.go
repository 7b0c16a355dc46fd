package catalog

// EventKind names the mutation behind an Event.
type EventKind int

const (
	EventToggled EventKind = iota + 1
	EventPatched
	EventAdded
	EventRefreshed
	EventHydrated
)

func (k EventKind) String() string {
	switch k {
	case EventToggled:
		return "toggled"
	case EventPatched:
		return "patched"
	case EventAdded:
		return "added"
	case EventRefreshed:
		return "refreshed"
	case EventHydrated:
		return "hydrated"
	default:
		return "unknown"
	}
}

// Event tells subscribers the catalog changed. ID is empty for events
// that touch the whole catalog.
type Event struct {
	Kind EventKind
	ID   string
}

const subscriberBuffer = 16

// Subscribe returns a channel of catalog events and a function that
// unsubscribes. Delivery is best effort: a subscriber that falls behind
// loses events rather than stalling mutations. The channel is closed by
// the cancel function or by Close.
func (s *Store) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (s *Store) publish(ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.logger.Debug("dropped catalog event", "kind", ev.Kind.String(), "id", ev.ID)
		}
	}
}

func (s *Store) closeSubscribers() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}
