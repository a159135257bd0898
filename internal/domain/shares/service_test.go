package shares

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"project-share-manager/internal/domain/activity"
	"project-share-manager/internal/domain/permissions"
)

// ---- fake repo (in-package) ----

type fakeRepo struct {
	mu   sync.Mutex
	byID map[string]ProjectShare

	createErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[string]ProjectShare{}}
}

func (r *fakeRepo) Create(ctx context.Context, s ProjectShare) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if s.ShareKey != "" {
		for _, x := range r.byID {
			if x.ShareKey == s.ShareKey {
				return ErrShareKeyTaken
			}
		}
	}
	r.byID[s.ID] = s
	return nil
}

func (r *fakeRepo) Update(ctx context.Context, s ProjectShare) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[s.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.IsRevoked {
		return ErrAlreadyRevoked
	}
	s.IsRevoked = false
	s.SharedWithEmail, s.SharedWithUserID, s.ShareKey = cur.SharedWithEmail, cur.SharedWithUserID, cur.ShareKey
	r.byID[s.ID] = s
	return nil
}

func (r *fakeRepo) Revoke(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if cur.IsRevoked {
		return ErrAlreadyRevoked
	}
	cur.IsRevoked = true
	cur.UpdatedAt = at
	r.byID[id] = cur
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if !cur.IsRevoked {
		return ErrNotRevoked
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (ProjectShare, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return ProjectShare{}, ErrNotFound
	}
	return s, nil
}

func (r *fakeRepo) GetByKey(ctx context.Context, key string) (ProjectShare, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.byID {
		if s.ShareKey == key {
			return s, nil
		}
	}
	return ProjectShare{}, ErrNotFound
}

func (r *fakeRepo) ListByProject(ctx context.Context, projectID string) ([]ProjectShare, error) {
	return r.filter(func(s ProjectShare) bool { return s.ProjectID == projectID }), nil
}

func (r *fakeRepo) ListForRequester(ctx context.Context, projectID string, req Requester) ([]ProjectShare, error) {
	return r.filter(func(s ProjectShare) bool { return s.ProjectID == projectID && req.Matches(s) }), nil
}

func (r *fakeRepo) ListForGrantee(ctx context.Context, req Requester) ([]ProjectShare, error) {
	return r.filter(req.Matches), nil
}

func (r *fakeRepo) filter(keep func(ProjectShare) bool) []ProjectShare {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ProjectShare, 0)
	for _, s := range r.byID {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []activity.RecordInput
	err     error
}

func (f *fakeRecorder) Record(ctx context.Context, in activity.RecordInput) (activity.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return activity.Entry{}, f.err
	}
	f.entries = append(f.entries, in)
	return activity.Entry{ProjectID: in.ProjectID, ShareID: in.ShareID, Type: in.Type}, nil
}

func (f *fakeRecorder) types() []activity.Type {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]activity.Type, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Type)
	}
	return out
}

// ---- helpers ----

var t0 = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService(repo Repository, rec ActivityRecorder) *Service {
	svc := NewService(repo, Options{Activity: rec})
	svc.now = func() time.Time { return t0 }
	return svc
}

func mustCreate(t *testing.T, svc *Service, addr Addressing, draft ShareDraft) ProjectShare {
	t.Helper()
	sh, err := svc.Create(context.Background(), CreateInput{
		ProjectID:  "p1",
		CreatedBy:  "owner",
		Addressing: addr,
		Draft:      draft,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return sh
}

func ptrTime(t time.Time) *time.Time { return &t }

// ---- tests ----

func TestCreate_ByEmail_Normalizes(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil)

	sh := mustCreate(t, svc, ByEmail("  Ana@Example.COM "), ShareDraft{
		Permissions: map[string]map[string]bool{"screenplay": {"view": true}},
	})

	if sh.SharedWithEmail != "ana@example.com" {
		t.Fatalf("expected normalized email, got %q", sh.SharedWithEmail)
	}
	if sh.SharedWithUserID != "" || sh.ShareKey != "" {
		t.Fatalf("expected only email addressing, got %+v", sh)
	}
	if sh.IsRevoked {
		t.Fatalf("new share must not be revoked")
	}
	if !sh.CreatedAt.Equal(t0) {
		t.Fatalf("expected created_at=%v, got %v", t0, sh.CreatedAt)
	}
	if !sh.Permissions.Get(permissions.PageScreenplay).Can(permissions.ActionView) {
		t.Fatalf("expected screenplay.view")
	}
}

func TestCreate_InvalidPermissions(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil)

	_, err := svc.Create(context.Background(), CreateInput{
		ProjectID:  "p1",
		CreatedBy:  "owner",
		Addressing: ByUserID("u1"),
		Draft: ShareDraft{
			Permissions: map[string]map[string]bool{"crew": {"upload": true}},
		},
	})
	if !errors.Is(err, ErrInvalidPermissions) {
		t.Fatalf("expected ErrInvalidPermissions, got %v", err)
	}
}

func TestCreate_InvalidAddressing(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil)

	_, err := svc.Create(context.Background(), CreateInput{ProjectID: "p1", CreatedBy: "owner"})
	if !errors.Is(err, ErrInvalidAddressing) {
		t.Fatalf("expected ErrInvalidAddressing, got %v", err)
	}

	_, err = svc.Create(context.Background(), CreateInput{ProjectID: "p1", CreatedBy: "owner", Addressing: ByEmail("not-an-email")})
	if !errors.Is(err, ErrInvalidAddressing) {
		t.Fatalf("expected ErrInvalidAddressing for bad email, got %v", err)
	}
}

func TestParseAddressing(t *testing.T) {
	cases := []struct {
		name     string
		email    string
		userID   string
		key      string
		generate bool
		wantKind AddressKind
		wantErr  bool
	}{
		{name: "email", email: "a@b.c", wantKind: AddressEmail},
		{name: "user", userID: "u1", wantKind: AddressUserID},
		{name: "key", key: "abcdefgh", wantKind: AddressKey},
		{name: "generate", generate: true, wantKind: AddressKey},
		{name: "none", wantErr: true},
		{name: "blank email", email: "   ", wantErr: true},
		{name: "email and user", email: "a@b.c", userID: "u1", wantErr: true},
		{name: "key and generate", key: "abcdefgh", generate: true, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, err := ParseAddressing(tc.email, tc.userID, tc.key, tc.generate)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidAddressing) {
					t.Fatalf("expected ErrInvalidAddressing, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if a.Kind() != tc.wantKind {
				t.Fatalf("expected kind %q, got %q", tc.wantKind, a.Kind())
			}
		})
	}
}

func TestCreate_GeneratedKey_RetriesOnCollision(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)

	mustCreate(t, svc, ByKey("taken-key-0001"), ShareDraft{})

	keys := []string{"taken-key-0001", "taken-key-0001", "fresh-key-0002"}
	calls := 0
	svc.newKey = func() (string, error) {
		k := keys[calls]
		calls++
		return k, nil
	}

	sh := mustCreate(t, svc, GeneratedKey(), ShareDraft{})
	if sh.ShareKey != "fresh-key-0002" {
		t.Fatalf("expected fresh key, got %q", sh.ShareKey)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestCreate_GeneratedKey_Exhausted(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	mustCreate(t, svc, ByKey("always-the-same"), ShareDraft{})

	calls := 0
	svc.newKey = func() (string, error) {
		calls++
		return "always-the-same", nil
	}

	_, err := svc.Create(context.Background(), CreateInput{ProjectID: "p1", CreatedBy: "owner", Addressing: GeneratedKey()})
	if !errors.Is(err, ErrKeyGenerationExhausted) {
		t.Fatalf("expected ErrKeyGenerationExhausted, got %v", err)
	}
	if calls != DefaultMaxKeyAttempts {
		t.Fatalf("expected %d attempts, got %d", DefaultMaxKeyAttempts, calls)
	}
}

func TestCreate_SuppliedKeyCollision_NoRetry(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil)
	mustCreate(t, svc, ByKey("my-custom-key"), ShareDraft{})

	svc.newKey = func() (string, error) {
		t.Fatalf("must not generate a key when the caller supplied one")
		return "", nil
	}

	_, err := svc.Create(context.Background(), CreateInput{ProjectID: "p2", CreatedBy: "owner", Addressing: ByKey("my-custom-key")})
	if !errors.Is(err, ErrShareKeyTaken) {
		t.Fatalf("expected ErrShareKeyTaken, got %v", err)
	}
}

func TestCreate_GeneratedKeys_AreUniqueUnderConcurrency(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, Options{})

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Create(context.Background(), CreateInput{
				ProjectID:  fmt.Sprintf("p%d", i%3),
				CreatedBy:  "owner",
				Addressing: GeneratedKey(),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	}

	seen := map[string]bool{}
	for _, s := range repo.byID {
		if len(s.ShareKey) != DefaultKeyLength {
			t.Fatalf("expected key length %d, got %d", DefaultKeyLength, len(s.ShareKey))
		}
		if seen[s.ShareKey] {
			t.Fatalf("duplicate key %q", s.ShareKey)
		}
		seen[s.ShareKey] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d keys, got %d", n, len(seen))
	}
}

func TestUpdate_ClearsDeadlineAndKeepsAddressing(t *testing.T) {
	rec := &fakeRecorder{}
	svc := newTestService(newFakeRepo(), rec)

	sh := mustCreate(t, svc, ByUserID("u1"), ShareDraft{Deadline: ptrTime(t0.Add(24 * time.Hour))})

	updated, err := svc.Update(context.Background(), sh.ID, "owner", SharePatch{
		Deadline:    DeadlinePatch{Present: true, Value: nil},
		Permissions: map[string]map[string]bool{"timeline": {"view": true, "edit": true}},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Deadline != nil {
		t.Fatalf("expected deadline cleared, got %v", updated.Deadline)
	}
	if updated.SharedWithUserID != "u1" {
		t.Fatalf("addressing must not change, got %+v", updated)
	}
	tl := updated.Permissions.Get(permissions.PageTimeline)
	if !tl.Can(permissions.ActionView) || !tl.Can(permissions.ActionEdit) {
		t.Fatalf("expected timeline view+edit, got %v", tl.Granted())
	}

	got := rec.types()
	if len(got) != 2 || got[0] != activity.TypeShareCreated || got[1] != activity.TypeShareUpdated {
		t.Fatalf("unexpected activity: %v", got)
	}
}

func TestUpdate_AbsentFieldsUntouched(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil)
	deadline := t0.Add(48 * time.Hour)
	sh := mustCreate(t, svc, ByUserID("u1"), ShareDraft{
		Deadline:         &deadline,
		RequiresApproval: true,
		Permissions:      map[string]map[string]bool{"assets": {"upload": true}},
	})

	updated, err := svc.Update(context.Background(), sh.ID, "owner", SharePatch{
		Permissions: map[string]map[string]bool{"crew": {"view": true}},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Deadline == nil || !updated.Deadline.Equal(deadline) {
		t.Fatalf("deadline must stay, got %v", updated.Deadline)
	}
	if !updated.RequiresApproval {
		t.Fatalf("requires_approval must stay true")
	}
	if updated.Permissions.Get(permissions.PageAssets).Can(permissions.ActionUpload) {
		t.Fatalf("permissions must be replaced by the patch")
	}
}

func TestUpdate_RevokedShare(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil)
	sh := mustCreate(t, svc, ByUserID("u1"), ShareDraft{})

	if _, err := svc.Revoke(context.Background(), sh.ID, "owner"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	approval := true
	_, err := svc.Update(context.Background(), sh.ID, "owner", SharePatch{RequiresApproval: &approval})
	if !errors.Is(err, ErrAlreadyRevoked) {
		t.Fatalf("expected ErrAlreadyRevoked, got %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil)
	approval := true
	_, err := svc.Update(context.Background(), "missing", "owner", SharePatch{RequiresApproval: &approval})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate_EmptyPatchRejectedWithoutSideEffects(t *testing.T) {
	rec := &fakeRecorder{}
	repo := newFakeRepo()
	svc := newTestService(repo, rec)
	sh := mustCreate(t, svc, ByUserID("u1"), ShareDraft{})

	svc.now = func() time.Time { return t0.Add(time.Hour) }
	_, err := svc.Update(context.Background(), sh.ID, "owner", SharePatch{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	stored, err := repo.GetByID(context.Background(), sh.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.UpdatedAt.Equal(sh.UpdatedAt) {
		t.Fatalf("updated_at changed: %v -> %v", sh.UpdatedAt, stored.UpdatedAt)
	}
	for _, e := range rec.entries {
		if e.Type == activity.TypeShareUpdated {
			t.Fatalf("empty patch must not record %s", e.Type)
		}
	}
}

func TestRevoke_NotIdempotent_KeepsPermissions(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil)
	deadline := t0.Add(time.Hour)
	sh := mustCreate(t, svc, ByEmail("a@b.c"), ShareDraft{
		Deadline:    &deadline,
		Permissions: map[string]map[string]bool{"crew": {"view": true}},
	})

	revoked, err := svc.Revoke(context.Background(), sh.ID, "owner")
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if !revoked.IsRevoked {
		t.Fatalf("expected revoked")
	}

	stored, _ := svc.Get(context.Background(), sh.ID)
	if !stored.Permissions.Equal(sh.Permissions) || stored.Deadline == nil {
		t.Fatalf("revoke must keep permissions and deadline, got %+v", stored)
	}

	if _, err := svc.Revoke(context.Background(), sh.ID, "owner"); !errors.Is(err, ErrAlreadyRevoked) {
		t.Fatalf("expected ErrAlreadyRevoked, got %v", err)
	}
}

func TestDelete_RequiresRevokeFirst(t *testing.T) {
	rec := &fakeRecorder{}
	svc := newTestService(newFakeRepo(), rec)
	sh := mustCreate(t, svc, ByUserID("u1"), ShareDraft{})

	if err := svc.Delete(context.Background(), sh.ID, "owner"); !errors.Is(err, ErrNotRevoked) {
		t.Fatalf("expected ErrNotRevoked, got %v", err)
	}
	if _, err := svc.Get(context.Background(), sh.ID); err != nil {
		t.Fatalf("share must still exist: %v", err)
	}

	if _, err := svc.Revoke(context.Background(), sh.ID, "owner"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := svc.Delete(context.Background(), sh.ID, "owner"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), sh.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	want := []activity.Type{activity.TypeShareCreated, activity.TypeShareRevoked, activity.TypeShareDeleted}
	got := rec.types()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestCreate_ActivityFailureDoesNotUndo(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeRecorder{err: errors.New("log down")})

	sh := mustCreate(t, svc, ByUserID("u1"), ShareDraft{})
	if _, err := repo.GetByID(context.Background(), sh.ID); err != nil {
		t.Fatalf("share must be stored even if activity fails: %v", err)
	}
}

func TestRoundTrip_PermissionsPayload(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil)
	payload := map[string]map[string]bool{
		"screenplay": {"view": true, "edit": false, "add_scenes": true},
		"assets":     {"view": true, "upload": true},
	}
	sh := mustCreate(t, svc, ByUserID("u1"), ShareDraft{Permissions: payload})

	got, err := svc.Get(context.Background(), sh.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	reparsed, err := permissions.Validate(got.Permissions.Payload())
	if err != nil {
		t.Fatalf("validate payload: %v", err)
	}
	if !reparsed.Equal(sh.Permissions) {
		t.Fatalf("round trip mismatch")
	}
}

func TestListSharedWith(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil)
	mustCreate(t, svc, ByEmail("ana@example.com"), ShareDraft{})
	mustCreate(t, svc, ByUserID("u-ana"), ShareDraft{})
	mustCreate(t, svc, ByUserID("someone-else"), ShareDraft{})
	mustCreate(t, svc, GeneratedKey(), ShareDraft{})

	items, err := svc.ListSharedWith(context.Background(), Requester{Email: "ANA@example.com", UserID: "u-ana"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 shares, got %d", len(items))
	}
	for _, s := range items {
		if s.ShareKey != "" {
			t.Fatalf("key shares must not be listed")
		}
	}

	if _, err := svc.ListSharedWith(context.Background(), Requester{ShareKey: "x"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStatusOf(t *testing.T) {
	past := t0.Add(-time.Minute)
	cases := []struct {
		name string
		sh   ProjectShare
		want Status
	}{
		{name: "active", sh: ProjectShare{}, want: StatusActive},
		{name: "deadline equal now is active", sh: ProjectShare{Deadline: ptrTime(t0)}, want: StatusActive},
		{name: "expired", sh: ProjectShare{Deadline: &past}, want: StatusExpired},
		{name: "revoked wins", sh: ProjectShare{Deadline: &past, IsRevoked: true}, want: StatusRevoked},
	}
	for _, tc := range cases {
		if got := StatusOf(tc.sh, t0); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestGranteeLabel_HidesKey(t *testing.T) {
	if got := granteeLabel(ProjectShare{ShareKey: "secret"}); strings.Contains(got, "secret") {
		t.Fatalf("label must not contain the key, got %q", got)
	}
}
