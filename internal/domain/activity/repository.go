package activity

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, e Entry) error
	ListByProject(ctx context.Context, projectID string, filter ListFilter) ([]Entry, error)
}

type ListFilter struct {
	Types   []Type
	ShareID string
	From    *time.Time
	To      *time.Time
	Limit   int
}
