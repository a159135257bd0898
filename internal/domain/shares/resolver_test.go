package shares

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project-share-manager/internal/domain/permissions"
)

func newTestResolver(repo Reader) *Resolver {
	r := NewResolver(repo)
	r.now = func() time.Time { return t0 }
	return r
}

func TestResolve_CaseInsensitiveEmail(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	res := newTestResolver(repo)

	_, err := svc.Create(context.Background(), CreateInput{
		ProjectID:  "P1",
		CreatedBy:  "owner",
		Addressing: ByEmail("a@x.com"),
		Draft:      ShareDraft{Permissions: map[string]map[string]bool{"screenplay": {"view": true}}},
	})
	require.NoError(t, err)

	got, err := res.Resolve(context.Background(), Requester{Email: "A@X.com"}, "P1", permissions.PageScreenplay)
	require.NoError(t, err)

	assert.Equal(t, map[permissions.Action]bool{
		permissions.ActionView:       true,
		permissions.ActionEdit:       false,
		permissions.ActionDelete:     false,
		permissions.ActionAddScenes:  false,
		permissions.ActionEditScenes: false,
	}, got.Flags())
}

func TestResolve_RevokedGrantsNothing(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	res := newTestResolver(repo)

	sh, err := svc.Create(context.Background(), CreateInput{
		ProjectID:  "P1",
		CreatedBy:  "owner",
		Addressing: ByEmail("a@x.com"),
		Draft:      ShareDraft{Permissions: map[string]map[string]bool{"screenplay": {"view": true}}},
	})
	require.NoError(t, err)

	_, err = svc.Revoke(context.Background(), sh.ID, "owner")
	require.NoError(t, err)

	got, err := res.Resolve(context.Background(), Requester{Email: "a@x.com"}, "P1", permissions.PageScreenplay)
	require.NoError(t, err)
	assert.True(t, got.None())
}

func TestResolve_ExpiredGrantsNothing(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	res := newTestResolver(repo)

	_, err := svc.Create(context.Background(), CreateInput{
		ProjectID:  "P1",
		CreatedBy:  "owner",
		Addressing: ByUserID("u1"),
		Draft: ShareDraft{
			Permissions: map[string]map[string]bool{"screenplay": {"view": true}},
			Deadline:    ptrTime(t0.Add(-time.Hour)),
		},
	})
	require.NoError(t, err)

	got, err := res.Resolve(context.Background(), Requester{UserID: "u1"}, "P1", permissions.PageScreenplay)
	require.NoError(t, err)
	assert.True(t, got.None())
}

func TestUpdate_RevokedKeepsPermissions(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)

	sh, err := svc.Create(context.Background(), CreateInput{
		ProjectID:  "P1",
		CreatedBy:  "owner",
		Addressing: ByUserID("u1"),
		Draft:      ShareDraft{Permissions: map[string]map[string]bool{"crew": {"view": true}}},
	})
	require.NoError(t, err)
	_, err = svc.Revoke(context.Background(), sh.ID, "owner")
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), sh.ID, "owner", SharePatch{
		Permissions: map[string]map[string]bool{"crew": {"view": true, "edit": true}},
	})
	require.ErrorIs(t, err, ErrAlreadyRevoked)

	stored, err := repo.GetByID(context.Background(), sh.ID)
	require.NoError(t, err)
	assert.True(t, stored.Permissions.Equal(sh.Permissions))
}

func TestResolve_UnionAcrossEmailAndKey(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	res := newTestResolver(repo)

	_, err := svc.Create(context.Background(), CreateInput{
		ProjectID:  "P1",
		CreatedBy:  "owner",
		Addressing: ByEmail("a@x.com"),
		Draft:      ShareDraft{Permissions: map[string]map[string]bool{"timeline": {"view": true}}},
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateInput{
		ProjectID:  "P1",
		CreatedBy:  "owner",
		Addressing: ByKey("link-key-123"),
		Draft: ShareDraft{
			Permissions:      map[string]map[string]bool{"timeline": {"edit": true}, "props": {"add": true}},
			RequiresApproval: true,
		},
	})
	require.NoError(t, err)

	d, err := res.ResolveDecision(context.Background(), Requester{Email: "a@x.com", ShareKey: "link-key-123"}, "P1")
	require.NoError(t, err)

	tl := d.Permissions.Get(permissions.PageTimeline)
	assert.True(t, tl.Can(permissions.ActionView))
	assert.True(t, tl.Can(permissions.ActionEdit))
	assert.True(t, d.Permissions.Get(permissions.PageProps).Can(permissions.ActionAdd))
	assert.True(t, d.RequiresApproval)
	assert.Equal(t, 2, d.Matched)
	assert.Len(t, d.Permissions, len(permissions.Pages()))

	// Solo por email no hay edit ni aprobación.
	d, err = res.ResolveDecision(context.Background(), Requester{Email: "a@x.com"}, "P1")
	require.NoError(t, err)
	assert.False(t, d.Permissions.Get(permissions.PageTimeline).Can(permissions.ActionEdit))
	assert.False(t, d.RequiresApproval)
}

func TestResolve_OtherProjectIgnored(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	res := newTestResolver(repo)

	_, err := svc.Create(context.Background(), CreateInput{
		ProjectID:  "P2",
		CreatedBy:  "owner",
		Addressing: ByUserID("u1"),
		Draft:      ShareDraft{Permissions: map[string]map[string]bool{"lighting_plots": {"view": true}}},
	})
	require.NoError(t, err)

	got, err := res.Resolve(context.Background(), Requester{UserID: "u1"}, "P1", permissions.PageLightingPlots)
	require.NoError(t, err)
	assert.True(t, got.None())
}

func TestResolve_EmptyRequesterAndUnknownPage(t *testing.T) {
	res := newTestResolver(newFakeRepo())

	got, err := res.ResolveAll(context.Background(), Requester{}, "P1")
	require.NoError(t, err)
	for _, p := range permissions.Pages() {
		assert.True(t, got.Get(p).None(), "page %s", p)
	}

	_, err = res.Resolve(context.Background(), Requester{UserID: "u1"}, "P1", permissions.Page("storyline"))
	assert.ErrorIs(t, err, ErrInvalidPermissions)
}

type failingReader struct{}

func (failingReader) GetByKey(ctx context.Context, key string) (ProjectShare, error) {
	return ProjectShare{}, errors.New("db down")
}

func (failingReader) ListForRequester(ctx context.Context, projectID string, r Requester) ([]ProjectShare, error) {
	return nil, errors.New("db down")
}

func TestResolve_StorageErrorPropagates(t *testing.T) {
	res := newTestResolver(failingReader{})

	_, err := res.Resolve(context.Background(), Requester{UserID: "u1"}, "P1", permissions.PageCrew)
	require.Error(t, err)

	_, err = res.Redeem(context.Background(), "some-key")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRedeem(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	res := newTestResolver(repo)

	active, err := svc.Create(context.Background(), CreateInput{ProjectID: "P1", CreatedBy: "owner", Addressing: ByKey("active-key-1")})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateInput{
		ProjectID:  "P1",
		CreatedBy:  "owner",
		Addressing: ByKey("expired-key-1"),
		Draft:      ShareDraft{Deadline: ptrTime(t0.Add(-time.Second))},
	})
	require.NoError(t, err)

	got, err := res.Redeem(context.Background(), "active-key-1")
	require.NoError(t, err)
	assert.Equal(t, active.ID, got.ID)

	_, err = res.Redeem(context.Background(), "expired-key-1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = res.Redeem(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Revoke(context.Background(), active.ID, "owner")
	require.NoError(t, err)
	_, err = res.Redeem(context.Background(), "active-key-1")
	assert.ErrorIs(t, err, ErrNotFound)
}
