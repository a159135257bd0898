package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"project-share-manager/internal/domain/activity"
)

type activityRepo struct {
	mu      sync.RWMutex
	entries []activity.Entry
}

func NewActivityRepo() activity.Repository {
	return &activityRepo{}
}

func (r *activityRepo) Create(ctx context.Context, e activity.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		return errors.New("activity id required")
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *activityRepo) ListByProject(ctx context.Context, projectID string, filter activity.ListFilter) ([]activity.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	out := make([]activity.Entry, 0)
	// Recorremos al revés para que, a igual instante, salga primero lo último registrado.
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.ProjectID != projectID {
			continue
		}
		if filter.ShareID != "" && e.ShareID != filter.ShareID {
			continue
		}
		if len(filter.Types) > 0 && !containsType(filter.Types, e.Type) {
			continue
		}
		if filter.From != nil && e.OccurredAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.OccurredAt.After(*filter.To) {
			continue
		}
		out = append(out, e)
	}

	// Más reciente primero
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func containsType(types []activity.Type, t activity.Type) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}
