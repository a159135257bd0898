package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project-share-manager/internal/domain/permissions"
)

func TestMigrationFiles_Ordered(t *testing.T) {
	files, err := migrationFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"0001_projects.sql",
		"0002_project_shares.sql",
		"0003_share_activity.sql",
	}, files)
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("CREATE TABLE a (x int);\n\n  CREATE INDEX i ON a (x);  \n")
	assert.Equal(t, []string{"CREATE TABLE a (x int)", "CREATE INDEX i ON a (x)"}, got)
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505"}
	assert.True(t, isUniqueViolation(dup))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", dup)))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}

func TestPermissionsJSONRoundTrip(t *testing.T) {
	in := permissions.Set{
		permissions.PageAssets:     permissions.MustNew(permissions.PageAssets, permissions.ActionView, permissions.ActionUpload),
		permissions.PageScreenplay: permissions.MustNew(permissions.PageScreenplay, permissions.ActionEditScenes),
	}

	raw, err := encodePermissions(in)
	require.NoError(t, err)

	out, err := decodePermissions(raw)
	require.NoError(t, err)
	assert.True(t, in.Equal(out))

	empty, err := decodePermissions(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = decodePermissions([]byte(`{"crew":{"upload":true}}`))
	assert.ErrorIs(t, err, permissions.ErrInvalidPermissions)
}

func TestToNullString(t *testing.T) {
	assert.False(t, toNullString("   ").Valid)
	v := toNullString(" abc ")
	assert.True(t, v.Valid)
	assert.Equal(t, "abc", v.String)
}
