package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"project-share-manager/internal/domain/permissions"
	"project-share-manager/internal/domain/shares"
)

type SharesRepo struct {
	db *sql.DB
}

func NewSharesRepo(db *sql.DB) *SharesRepo {
	return &SharesRepo{db: db}
}

const shareColumns = `
	id, project_id,
	shared_with_email, shared_with_user_id, share_key,
	deadline, requires_approval, is_revoked,
	permissions,
	created_by, created_at, updated_at`

func (r *SharesRepo) Create(ctx context.Context, s shares.ProjectShare) error {
	perms, err := encodePermissions(s.Permissions)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO project_shares (`+shareColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		s.ID,
		s.ProjectID,
		toNullString(strings.ToLower(s.SharedWithEmail)),
		toNullString(s.SharedWithUserID),
		toNullString(s.ShareKey),
		toNullTime(s.Deadline),
		s.RequiresApproval,
		s.IsRevoked,
		perms,
		s.CreatedBy,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		// El índice único parcial sobre share_key es el chequeo atómico.
		if isUniqueViolation(err) {
			return shares.ErrShareKeyTaken
		}
		return err
	}
	return nil
}

// Update no toca addressing ni is_revoked, y no escribe sobre un share revocado.
func (r *SharesRepo) Update(ctx context.Context, s shares.ProjectShare) error {
	perms, err := encodePermissions(s.Permissions)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE project_shares
		SET
			permissions = $2,
			deadline = $3,
			requires_approval = $4,
			updated_at = $5
		WHERE id = $1 AND is_revoked = FALSE
	`,
		s.ID,
		perms,
		toNullTime(s.Deadline),
		s.RequiresApproval,
		s.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return r.explainNoRows(ctx, res, s.ID, shares.ErrAlreadyRevoked, true)
}

func (r *SharesRepo) Revoke(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE project_shares
		SET is_revoked = TRUE, updated_at = $2
		WHERE id = $1 AND is_revoked = FALSE
	`, id, at)
	if err != nil {
		return err
	}
	return r.explainNoRows(ctx, res, id, shares.ErrAlreadyRevoked, true)
}

func (r *SharesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM project_shares
		WHERE id = $1 AND is_revoked = TRUE
	`, id)
	if err != nil {
		return err
	}
	return r.explainNoRows(ctx, res, id, shares.ErrNotRevoked, false)
}

// explainNoRows: si no se afectó ninguna fila, distingue "no existe" de
// "existe pero is_revoked no era el esperado".
func (r *SharesRepo) explainNoRows(ctx context.Context, res sql.Result, id string, stateErr error, wantRevoked bool) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var revoked bool
	err = r.db.QueryRowContext(ctx, `SELECT is_revoked FROM project_shares WHERE id = $1`, id).Scan(&revoked)
	if errors.Is(err, sql.ErrNoRows) {
		return shares.ErrNotFound
	}
	if err != nil {
		return err
	}
	if revoked == wantRevoked {
		return stateErr
	}
	return fmt.Errorf("project_shares %s: no rows affected", id)
}

func (r *SharesRepo) GetByID(ctx context.Context, id string) (shares.ProjectShare, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return shares.ProjectShare{}, shares.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+shareColumns+` FROM project_shares WHERE id = $1`, id)
	return scanShareRow(row)
}

func (r *SharesRepo) GetByKey(ctx context.Context, key string) (shares.ProjectShare, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return shares.ProjectShare{}, shares.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+shareColumns+` FROM project_shares WHERE share_key = $1`, key)
	return scanShareRow(row)
}

func (r *SharesRepo) ListByProject(ctx context.Context, projectID string) ([]shares.ProjectShare, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, nil
	}
	return r.query(ctx, `
		SELECT `+shareColumns+`
		FROM project_shares
		WHERE project_id = $1
		ORDER BY created_at ASC, id ASC
	`, projectID)
}

// ListForRequester: los campos vacíos del requester van como NULL y no matchean.
func (r *SharesRepo) ListForRequester(ctx context.Context, projectID string, req shares.Requester) ([]shares.ProjectShare, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" || req.IsEmpty() {
		return nil, nil
	}
	return r.query(ctx, `
		SELECT `+shareColumns+`
		FROM project_shares
		WHERE project_id = $1
		  AND (
			lower(shared_with_email) = $2
			OR shared_with_user_id = $3
			OR share_key = $4
		  )
		ORDER BY created_at ASC, id ASC
	`,
		projectID,
		toNullString(strings.ToLower(req.Email)),
		toNullString(req.UserID),
		toNullString(req.ShareKey),
	)
}

func (r *SharesRepo) ListForGrantee(ctx context.Context, req shares.Requester) ([]shares.ProjectShare, error) {
	if strings.TrimSpace(req.Email) == "" && strings.TrimSpace(req.UserID) == "" {
		return nil, nil
	}
	return r.query(ctx, `
		SELECT `+shareColumns+`
		FROM project_shares
		WHERE lower(shared_with_email) = $1
		   OR shared_with_user_id = $2
		ORDER BY created_at ASC, id ASC
	`,
		toNullString(strings.ToLower(req.Email)),
		toNullString(req.UserID),
	)
}

func (r *SharesRepo) query(ctx context.Context, q string, args ...any) ([]shares.ProjectShare, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]shares.ProjectShare, 0)
	for rows.Next() {
		s, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShareRow(row *sql.Row) (shares.ProjectShare, error) {
	s, err := scanShare(row)
	if errors.Is(err, sql.ErrNoRows) {
		return shares.ProjectShare{}, shares.ErrNotFound
	}
	return s, err
}

func scanShare(sc rowScanner) (shares.ProjectShare, error) {
	var (
		s                  shares.ProjectShare
		email, userID, key sql.NullString
		deadline           sql.NullTime
		rawPerms           []byte
	)
	if err := sc.Scan(
		&s.ID,
		&s.ProjectID,
		&email,
		&userID,
		&key,
		&deadline,
		&s.RequiresApproval,
		&s.IsRevoked,
		&rawPerms,
		&s.CreatedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return shares.ProjectShare{}, err
	}

	s.SharedWithEmail = email.String
	s.SharedWithUserID = userID.String
	s.ShareKey = key.String
	s.Deadline = fromNullTime(deadline)
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()

	perms, err := decodePermissions(rawPerms)
	if err != nil {
		return shares.ProjectShare{}, fmt.Errorf("project_shares %s: %w", s.ID, err)
	}
	s.Permissions = perms
	return s, nil
}

func encodePermissions(s permissions.Set) ([]byte, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.Payload())
}

func decodePermissions(raw []byte) (permissions.Set, error) {
	if len(raw) == 0 {
		return permissions.Set{}, nil
	}
	var payload map[string]map[string]bool
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return permissions.Validate(payload)
}
