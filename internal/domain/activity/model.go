package activity

import "time"

type Type string

const (
	TypeShareCreated Type = "SHARE_CREATED"
	TypeShareUpdated Type = "SHARE_UPDATED"
	TypeShareRevoked Type = "SHARE_REVOKED"
	TypeShareDeleted Type = "SHARE_DELETED"
)

func IsKnownType(t Type) bool {
	switch t {
	case TypeShareCreated, TypeShareUpdated, TypeShareRevoked, TypeShareDeleted:
		return true
	default:
		return false
	}
}

// Entry es una línea del historial de shares de un proyecto.
type Entry struct {
	ID        string
	ProjectID string
	ShareID   string

	Type Type

	ActorUserID string
	// Grantee describe al destinatario (email, user id o "share_key").
	Grantee string

	OccurredAt time.Time
}
