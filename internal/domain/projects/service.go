package projects

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("project not found")
)

const (
	DefaultOwnerCacheSize = 1024
	ownerCacheTTL         = 30 * time.Minute
)

type Service struct {
	repo Repository
	now  func() time.Time

	// El dueño de un proyecto no cambia, así que OwnerOf se cachea.
	owners *expirable.LRU[string, string]
}

// NewService con cacheSize <= 0 usa DefaultOwnerCacheSize.
func NewService(repo Repository, cacheSize int) *Service {
	if cacheSize <= 0 {
		cacheSize = DefaultOwnerCacheSize
	}
	return &Service{
		repo:   repo,
		now:    time.Now,
		owners: expirable.NewLRU[string, string](cacheSize, nil, ownerCacheTTL),
	}
}

type CreateInput struct {
	Name string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Project, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	name := strings.TrimSpace(in.Name)
	if ownerUserID == "" || name == "" {
		return Project{}, ErrInvalidInput
	}

	now := s.now().UTC()
	p := Project{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Name:        name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Project{}, err
	}
	s.owners.Add(p.ID, p.OwnerUserID)
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Project, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Project{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Project, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByOwner(ctx, ownerUserID)
}
