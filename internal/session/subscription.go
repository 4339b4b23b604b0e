package session

import (
	"sync"

	"github.com/desertthunder/moviex/internal/models"
)

// Subscription receives every published user; nil means signed out.
//
// The channel holds at most one value. A slow reader never blocks the publisher: an unread value is
// replaced by the newest one, so readers always catch up to the latest state.
type Subscription struct {
	ch    chan *models.User
	store *Store
	once  sync.Once
}

// C returns the delivery channel. It is closed by [Subscription.Close] or [Store.Close].
func (sub *Subscription) C() <-chan *models.User {
	return sub.ch
}

// Close stops delivery and closes the channel. It is safe to call more than once.
func (sub *Subscription) Close() {
	sub.store.mu.Lock()
	defer sub.store.mu.Unlock()
	sub.store.removeLocked(sub)
}

// Subscribe registers a subscription primed with the current user, so a late subscriber sees the
// latest value without waiting for the next change. On a closed store the channel is already closed.
func (s *Store) Subscribe() *Subscription {
	sub := &Subscription{ch: make(chan *models.User, 1), store: s}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		sub.once.Do(func() { close(sub.ch) })
		return sub
	}
	sub.ch <- cloneUser(s.user)
	s.subs = append(s.subs, sub)
	return sub
}

// Subscribers returns the number of live subscriptions.
func (s *Store) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Close closes every live subscription. Later Login and Hydrate calls do nothing.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for _, sub := range s.subs {
		sub.once.Do(func() { close(sub.ch) })
	}
	s.subs = nil
}

// publishLocked records user and delivers it to every subscription.
func (s *Store) publishLocked(user *models.User) {
	s.user = cloneUser(user)
	for _, sub := range s.subs {
		select {
		case <-sub.ch:
		default:
		}
		sub.ch <- cloneUser(user)
	}
}

func (s *Store) removeLocked(sub *Subscription) {
	for i, other := range s.subs {
		if other == sub {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			break
		}
	}
	sub.once.Do(func() { close(sub.ch) })
}
