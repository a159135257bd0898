package activity

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeRepo struct {
	created    []Entry
	lastFilter ListFilter
}

func (r *fakeRepo) Create(ctx context.Context, e Entry) error {
	r.created = append(r.created, e)
	return nil
}

func (r *fakeRepo) ListByProject(ctx context.Context, projectID string, filter ListFilter) ([]Entry, error) {
	r.lastFilter = filter
	out := make([]Entry, 0)
	for _, e := range r.created {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestRecord(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	fixed := time.Date(2026, 4, 1, 9, 0, 0, 0, time.FixedZone("X", 3600))
	svc.now = func() time.Time { return fixed }

	e, err := svc.Record(context.Background(), RecordInput{
		ProjectID:   " p1 ",
		ShareID:     "s1",
		Type:        TypeShareCreated,
		ActorUserID: "owner",
		Grantee:     "a@b.c",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if e.ID == "" || e.ProjectID != "p1" {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.OccurredAt.Location() != time.UTC || !e.OccurredAt.Equal(fixed) {
		t.Fatalf("expected UTC occurred_at, got %v", e.OccurredAt)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 stored entry, got %d", len(repo.created))
	}
}

func TestRecord_InvalidInput(t *testing.T) {
	svc := NewService(&fakeRepo{})

	cases := []RecordInput{
		{ShareID: "s1", Type: TypeShareCreated},
		{ProjectID: "p1", Type: TypeShareCreated},
		{ProjectID: "p1", ShareID: "s1", Type: Type("SHARE_RENAMED")},
	}
	for i, in := range cases {
		if _, err := svc.Record(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestListByProject_ClampsLimit(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	if _, err := svc.ListByProject(context.Background(), "p1", ListFilter{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if repo.lastFilter.Limit != defaultLimit {
		t.Fatalf("expected default limit %d, got %d", defaultLimit, repo.lastFilter.Limit)
	}

	if _, err := svc.ListByProject(context.Background(), "p1", ListFilter{Limit: 10_000}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if repo.lastFilter.Limit != maxLimit {
		t.Fatalf("expected max limit %d, got %d", maxLimit, repo.lastFilter.Limit)
	}

	if _, err := svc.ListByProject(context.Background(), "", ListFilter{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
