package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"project-share-manager/internal/domain/activity"
)

type ActivityRepo struct {
	db *sql.DB
}

func NewActivityRepo(db *sql.DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

func (r *ActivityRepo) Create(ctx context.Context, e activity.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO share_activity (
			id, project_id, share_id,
			type, actor_user_id, grantee,
			occurred_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		e.ID,
		e.ProjectID,
		e.ShareID,
		string(e.Type),
		e.ActorUserID,
		e.Grantee,
		e.OccurredAt,
	)
	return err
}

func (r *ActivityRepo) ListByProject(ctx context.Context, projectID string, filter activity.ListFilter) ([]activity.Entry, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, nil
	}

	sb := strings.Builder{}
	sb.WriteString(`
		SELECT id, project_id, share_id, type, actor_user_id, grantee, occurred_at
		FROM share_activity
		WHERE project_id = $1
	`)

	args := []any{projectID}
	argN := 2

	if filter.ShareID != "" {
		sb.WriteString(fmt.Sprintf(" AND share_id = $%d", argN))
		args = append(args, filter.ShareID)
		argN++
	}

	if len(filter.Types) > 0 {
		placeholders := make([]string, 0, len(filter.Types))
		for _, t := range filter.Types {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argN))
			args = append(args, string(t))
			argN++
		}
		sb.WriteString(" AND type IN (" + strings.Join(placeholders, ",") + ")")
	}

	if filter.From != nil {
		sb.WriteString(fmt.Sprintf(" AND occurred_at >= $%d", argN))
		args = append(args, *filter.From)
		argN++
	}
	if filter.To != nil {
		sb.WriteString(fmt.Sprintf(" AND occurred_at <= $%d", argN))
		args = append(args, *filter.To)
		argN++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	sb.WriteString(" ORDER BY occurred_at DESC")
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]activity.Entry, 0)
	for rows.Next() {
		var e activity.Entry
		var typ string
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.ShareID, &typ, &e.ActorUserID, &e.Grantee, &e.OccurredAt); err != nil {
			return nil, err
		}
		e.Type = activity.Type(typ)
		e.OccurredAt = e.OccurredAt.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
