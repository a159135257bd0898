package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"project-share-manager/internal/domain/shares"
)

type shareRepo struct {
	mu    sync.RWMutex
	byID  map[string]shares.ProjectShare
	byKey map[string]string // share key -> id
}

func NewShareRepo() shares.Repository {
	return &shareRepo{
		byID:  make(map[string]shares.ProjectShare),
		byKey: make(map[string]string),
	}
}

func (r *shareRepo) Create(ctx context.Context, s shares.ProjectShare) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(s.ID) == "" {
		return errors.New("share id required")
	}
	if _, exists := r.byID[s.ID]; exists {
		return errors.New("share already exists")
	}
	// Chequeo y alta bajo el mismo lock: dos creates con la misma key no pueden ganar ambos.
	if s.ShareKey != "" {
		if _, taken := r.byKey[s.ShareKey]; taken {
			return shares.ErrShareKeyTaken
		}
		r.byKey[s.ShareKey] = s.ID
	}
	r.byID[s.ID] = copyShare(s)
	return nil
}

func (r *shareRepo) Update(ctx context.Context, s shares.ProjectShare) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[s.ID]
	if !ok {
		return shares.ErrNotFound
	}
	if cur.IsRevoked {
		return shares.ErrAlreadyRevoked
	}

	cur.Permissions = s.Permissions
	cur.Deadline = s.Deadline
	cur.RequiresApproval = s.RequiresApproval
	cur.UpdatedAt = s.UpdatedAt
	r.byID[s.ID] = copyShare(cur)
	return nil
}

func (r *shareRepo) Revoke(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[id]
	if !ok {
		return shares.ErrNotFound
	}
	if cur.IsRevoked {
		return shares.ErrAlreadyRevoked
	}
	cur.IsRevoked = true
	cur.UpdatedAt = at
	r.byID[id] = cur
	return nil
}

func (r *shareRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[id]
	if !ok {
		return shares.ErrNotFound
	}
	if !cur.IsRevoked {
		return shares.ErrNotRevoked
	}
	if cur.ShareKey != "" {
		delete(r.byKey, cur.ShareKey)
	}
	delete(r.byID, id)
	return nil
}

func (r *shareRepo) GetByID(ctx context.Context, id string) (shares.ProjectShare, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return shares.ProjectShare{}, shares.ErrNotFound
	}
	return copyShare(s), nil
}

func (r *shareRepo) GetByKey(ctx context.Context, key string) (shares.ProjectShare, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byKey[key]
	if !ok {
		return shares.ProjectShare{}, shares.ErrNotFound
	}
	return copyShare(r.byID[id]), nil
}

func (r *shareRepo) ListByProject(ctx context.Context, projectID string) ([]shares.ProjectShare, error) {
	return r.list(func(s shares.ProjectShare) bool { return s.ProjectID == projectID }), nil
}

func (r *shareRepo) ListForRequester(ctx context.Context, projectID string, req shares.Requester) ([]shares.ProjectShare, error) {
	return r.list(func(s shares.ProjectShare) bool {
		return s.ProjectID == projectID && req.Matches(s)
	}), nil
}

func (r *shareRepo) ListForGrantee(ctx context.Context, req shares.Requester) ([]shares.ProjectShare, error) {
	return r.list(req.Matches), nil
}

func (r *shareRepo) list(keep func(shares.ProjectShare) bool) []shares.ProjectShare {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]shares.ProjectShare, 0)
	for _, s := range r.byID {
		if keep(s) {
			out = append(out, copyShare(s))
		}
	}

	// Orden estable por created_at asc
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// copyShare evita que el llamador mutue el mapa de permisos guardado.
func copyShare(s shares.ProjectShare) shares.ProjectShare {
	s.Permissions = s.Permissions.Clone()
	if s.Deadline != nil {
		d := *s.Deadline
		s.Deadline = &d
	}
	return s
}
