package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"project-share-manager/internal/domain/projects"
)

type projectRepo struct {
	mu   sync.RWMutex
	byID map[string]projects.Project
}

func NewProjectRepo() projects.Repository {
	return &projectRepo{
		byID: make(map[string]projects.Project),
	}
}

func (r *projectRepo) Create(ctx context.Context, p projects.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("project id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("project already exists")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *projectRepo) GetByID(ctx context.Context, id string) (projects.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return projects.Project{}, projects.ErrNotFound
	}
	return p, nil
}

func (r *projectRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]projects.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]projects.Project, 0)
	for _, p := range r.byID {
		if p.OwnerUserID == ownerUserID {
			out = append(out, p)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
