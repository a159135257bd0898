package shares

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"project-share-manager/internal/domain/activity"
	"project-share-manager/internal/domain/permissions"
	"project-share-manager/internal/platform/logger"
)

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidAddressing      = errors.New("exactly one of shared_with_email, shared_with_user_id, share_key or generate_share_key is required")
	ErrInvalidPermissions     = permissions.ErrInvalidPermissions
	ErrNotFound               = errors.New("share not found")
	ErrAlreadyRevoked         = errors.New("share already revoked")
	ErrNotRevoked             = errors.New("share must be revoked before deletion")
	ErrShareKeyTaken          = errors.New("share key already in use")
	ErrKeyGenerationExhausted = errors.New("could not generate a unique share key")
)

const (
	DefaultKeyLength      = 32
	DefaultMaxKeyAttempts = 5
	minKeyLength          = 16
)

// ActivityRecorder recibe una entrada por cada mutación exitosa de un share.
type ActivityRecorder interface {
	Record(ctx context.Context, in activity.RecordInput) (activity.Entry, error)
}

type Options struct {
	KeyLength      int
	MaxKeyAttempts int
	Activity       ActivityRecorder
	Logger         logger.Logger
}

// Service es el ciclo de vida de los shares: crear, editar, revocar y borrar.
type Service struct {
	repo Repository
	now  func() time.Time

	newKey         func() (string, error)
	maxKeyAttempts int

	activity ActivityRecorder
	log      logger.Logger
}

func NewService(repo Repository, opts Options) *Service {
	keyLen := opts.KeyLength
	if keyLen < minKeyLength {
		keyLen = DefaultKeyLength
	}
	attempts := opts.MaxKeyAttempts
	if attempts <= 0 {
		attempts = DefaultMaxKeyAttempts
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Service{
		repo:           repo,
		now:            time.Now,
		newKey:         func() (string, error) { return gonanoid.New(keyLen) },
		maxKeyAttempts: attempts,
		activity:       opts.Activity,
		log:            log.With(map[string]any{"component": "shares"}),
	}
}

// ShareDraft son los campos editables de un share nuevo.
type ShareDraft struct {
	Permissions      map[string]map[string]bool
	Deadline         *time.Time
	RequiresApproval bool
}

// DeadlinePatch distingue "no vino" de "vino null" (limpiar deadline).
type DeadlinePatch struct {
	Present bool
	Value   *time.Time
}

// SharePatch: nil / Present=false significa "no tocar".
// Permissions reemplaza el payload completo.
type SharePatch struct {
	Permissions      map[string]map[string]bool
	Deadline         DeadlinePatch
	RequiresApproval *bool
}

func (p SharePatch) IsEmpty() bool {
	return p.Permissions == nil && !p.Deadline.Present && p.RequiresApproval == nil
}

type CreateInput struct {
	ProjectID  string
	CreatedBy  string
	Addressing Addressing
	Draft      ShareDraft
}

func (s *Service) Create(ctx context.Context, in CreateInput) (ProjectShare, error) {
	projectID := strings.TrimSpace(in.ProjectID)
	createdBy := strings.TrimSpace(in.CreatedBy)
	if projectID == "" || createdBy == "" {
		return ProjectShare{}, ErrInvalidInput
	}
	if err := in.Addressing.validate(); err != nil {
		return ProjectShare{}, err
	}

	perms, err := permissions.Validate(in.Draft.Permissions)
	if err != nil {
		return ProjectShare{}, err
	}

	now := s.now().UTC()
	sh := ProjectShare{
		ID:               uuid.NewString(),
		ProjectID:        projectID,
		Permissions:      perms,
		Deadline:         utcPtr(in.Draft.Deadline),
		RequiresApproval: in.Draft.RequiresApproval,
		IsRevoked:        false,
		CreatedBy:        createdBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	switch in.Addressing.Kind() {
	case AddressEmail:
		sh.SharedWithEmail = in.Addressing.Value()
	case AddressUserID:
		sh.SharedWithUserID = in.Addressing.Value()
	case AddressKey:
		sh.ShareKey = in.Addressing.Value()
	}

	if in.Addressing.Kind() == AddressKey && sh.ShareKey == "" {
		sh, err = s.createWithGeneratedKey(ctx, sh)
		if err != nil {
			return ProjectShare{}, err
		}
	} else if err := s.repo.Create(ctx, sh); err != nil {
		return ProjectShare{}, err
	}

	s.record(ctx, sh, activity.TypeShareCreated, createdBy)
	s.log.Info("share created", map[string]any{
		"share_id":   sh.ID,
		"project_id": sh.ProjectID,
		"addressing": string(in.Addressing.Kind()),
	})
	return sh, nil
}

// createWithGeneratedKey reintenta solo ante colisión de key.
func (s *Service) createWithGeneratedKey(ctx context.Context, sh ProjectShare) (ProjectShare, error) {
	for attempt := 1; attempt <= s.maxKeyAttempts; attempt++ {
		key, err := s.newKey()
		if err != nil {
			return ProjectShare{}, fmt.Errorf("generate share key: %w", err)
		}
		sh.ShareKey = key

		err = s.repo.Create(ctx, sh)
		if err == nil {
			return sh, nil
		}
		if !errors.Is(err, ErrShareKeyTaken) {
			return ProjectShare{}, err
		}
		s.log.Warn("share key collision", map[string]any{"attempt": attempt, "project_id": sh.ProjectID})
	}
	return ProjectShare{}, ErrKeyGenerationExhausted
}

// Update aplica el patch. El addressing no se puede cambiar y un patch vacío
// se rechaza sin tocar updated_at ni registrar actividad.
func (s *Service) Update(ctx context.Context, id, actorUserID string, patch SharePatch) (ProjectShare, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ProjectShare{}, ErrInvalidInput
	}
	if patch.IsEmpty() {
		return ProjectShare{}, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	sh, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ProjectShare{}, err
	}
	if sh.IsRevoked {
		return ProjectShare{}, ErrAlreadyRevoked
	}

	if patch.Permissions != nil {
		perms, err := permissions.Validate(patch.Permissions)
		if err != nil {
			return ProjectShare{}, err
		}
		sh.Permissions = perms
	}
	if patch.Deadline.Present {
		sh.Deadline = utcPtr(patch.Deadline.Value)
	}
	if patch.RequiresApproval != nil {
		sh.RequiresApproval = *patch.RequiresApproval
	}
	sh.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, sh); err != nil {
		return ProjectShare{}, err
	}

	s.record(ctx, sh, activity.TypeShareUpdated, actorUserID)
	s.log.Info("share updated", map[string]any{"share_id": sh.ID, "project_id": sh.ProjectID})
	return sh, nil
}

// Revoke no es idempotente: un segundo revoke devuelve ErrAlreadyRevoked.
// Permisos y deadline se conservan.
func (s *Service) Revoke(ctx context.Context, id, actorUserID string) (ProjectShare, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ProjectShare{}, ErrInvalidInput
	}

	sh, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ProjectShare{}, err
	}
	if sh.IsRevoked {
		return ProjectShare{}, ErrAlreadyRevoked
	}

	now := s.now().UTC()
	if err := s.repo.Revoke(ctx, id, now); err != nil {
		return ProjectShare{}, err
	}
	sh.IsRevoked = true
	sh.UpdatedAt = now

	s.record(ctx, sh, activity.TypeShareRevoked, actorUserID)
	s.log.Info("share revoked", map[string]any{"share_id": sh.ID, "project_id": sh.ProjectID})
	return sh, nil
}

// Delete borra definitivamente; exige revocar antes.
func (s *Service) Delete(ctx context.Context, id, actorUserID string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}

	sh, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !sh.IsRevoked {
		return ErrNotRevoked
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.record(ctx, sh, activity.TypeShareDeleted, actorUserID)
	s.log.Info("share deleted", map[string]any{"share_id": sh.ID, "project_id": sh.ProjectID})
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (ProjectShare, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ProjectShare{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByProject(ctx context.Context, projectID string) ([]ProjectShare, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByProject(ctx, projectID)
}

// ListSharedWith devuelve los shares dirigidos al email o user id del requester,
// en todos los proyectos. La share key no cuenta acá.
func (s *Service) ListSharedWith(ctx context.Context, r Requester) ([]ProjectShare, error) {
	r = Requester{Email: normalizeEmail(r.Email), UserID: strings.TrimSpace(r.UserID)}
	if r.IsEmpty() {
		return nil, ErrInvalidInput
	}
	return s.repo.ListForGrantee(ctx, r)
}

// Now expone el reloj del servicio para calcular status en los handlers.
func (s *Service) Now() time.Time { return s.now() }

func (s *Service) record(ctx context.Context, sh ProjectShare, t activity.Type, actor string) {
	if s.activity == nil {
		return
	}
	_, err := s.activity.Record(ctx, activity.RecordInput{
		ProjectID:   sh.ProjectID,
		ShareID:     sh.ID,
		Type:        t,
		ActorUserID: actor,
		Grantee:     granteeLabel(sh),
	})
	if err != nil {
		s.log.Warn("activity record failed", map[string]any{
			"share_id": sh.ID,
			"type":     string(t),
			"error":    err,
		})
	}
}

// granteeLabel no expone la share key en el historial.
func granteeLabel(sh ProjectShare) string {
	switch {
	case sh.SharedWithEmail != "":
		return sh.SharedWithEmail
	case sh.SharedWithUserID != "":
		return "user:" + sh.SharedWithUserID
	case sh.ShareKey != "":
		return "share_key"
	default:
		return ""
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
