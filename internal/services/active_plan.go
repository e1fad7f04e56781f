package services

import (
	"context"
	"sync"

	apperrors "echoplan/internal/errors"
	"echoplan/internal/logger"
)

// ActivePlanKey returns the storage key holding the active plan for scope.
func ActivePlanKey(scope string) string {
	return "active_plan:" + scope
}

// activePlanSelector holds the plan currently in scope. Writes update memory
// first and are never rolled back when persisting fails.
type activePlanSelector struct {
	store KeyValueStore
	key   string

	mu          sync.RWMutex
	planID      string
	subscribers map[int]func(string)
	nextSub     int
}

// NewActivePlanSelector reads the persisted active plan for scope once and
// returns the selector. A failed read starts with no active plan.
func NewActivePlanSelector(ctx context.Context, store KeyValueStore, scope string) ActivePlanSelector {
	s := &activePlanSelector{
		store:       store,
		key:         ActivePlanKey(scope),
		subscribers: make(map[int]func(string)),
	}
	planID, ok, err := store.Get(ctx, s.key)
	switch {
	case err != nil:
		logger.Get().Warnw("failed to load active plan", "key", s.key, "error", err)
	case ok:
		s.planID = planID
	}
	return s
}

// ActivePlanID returns the active plan, if any.
func (s *activePlanSelector) ActivePlanID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.planID, s.planID != ""
}

// SetActivePlan makes planID active and persists it. When persisting fails the
// in-memory selection stands and an ErrPersistenceWarning is returned.
func (s *activePlanSelector) SetActivePlan(ctx context.Context, planID string) error {
	if planID == "" {
		return apperrors.Validationf("plan id is required")
	}

	s.mu.Lock()
	s.planID = planID
	subs := make([]func(string), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(planID)
	}

	if err := s.store.Set(ctx, s.key, planID); err != nil {
		logger.Get().Warnw("failed to persist active plan", "key", s.key, "plan_id", planID, "error", err)
		return apperrors.Wrap(apperrors.ErrPersistenceWarning, err)
	}
	return nil
}

// Subscribe registers fn to be called with every new active plan.
func (s *activePlanSelector) Subscribe(fn func(planID string)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

// RequireActivePlan returns the active plan or ErrNoActivePlan.
func RequireActivePlan(sel ActivePlanSelector) (string, error) {
	if id, ok := sel.ActivePlanID(); ok {
		return id, nil
	}
	return "", apperrors.ErrNoActivePlan
}
