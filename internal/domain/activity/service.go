package activity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type RecordInput struct {
	ProjectID   string
	ShareID     string
	Type        Type
	ActorUserID string
	Grantee     string
}

func (s *Service) Record(ctx context.Context, in RecordInput) (Entry, error) {
	projectID := strings.TrimSpace(in.ProjectID)
	shareID := strings.TrimSpace(in.ShareID)
	if projectID == "" || shareID == "" {
		return Entry{}, ErrInvalidInput
	}
	if !IsKnownType(in.Type) {
		return Entry{}, ErrInvalidInput
	}

	e := Entry{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		ShareID:     shareID,
		Type:        in.Type,
		ActorUserID: strings.TrimSpace(in.ActorUserID),
		Grantee:     strings.TrimSpace(in.Grantee),
		OccurredAt:  s.now().UTC(),
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// ListByProject devuelve el historial más reciente primero.
func (s *Service) ListByProject(ctx context.Context, projectID string, filter ListFilter) ([]Entry, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, ErrInvalidInput
	}
	for _, t := range filter.Types {
		if !IsKnownType(t) {
			return nil, ErrInvalidInput
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	return s.repo.ListByProject(ctx, projectID, filter)
}
