package shares

import (
	"strings"
	"time"

	"project-share-manager/internal/domain/permissions"
)

// ProjectShare es una concesión de acceso a un proyecto para un destinatario.
type ProjectShare struct {
	ID        string
	ProjectID string

	// Exactamente uno de los tres queda poblado (ver Addressing).
	SharedWithEmail  string
	SharedWithUserID string
	ShareKey         string

	Permissions      permissions.Set
	Deadline         *time.Time
	RequiresApproval bool
	IsRevoked        bool

	CreatedBy string // owner que creó el share
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Addressing reconstruye el modo de direccionamiento del share.
func (s ProjectShare) Addressing() Addressing {
	switch {
	case s.SharedWithEmail != "":
		return ByEmail(s.SharedWithEmail)
	case s.SharedWithUserID != "":
		return ByUserID(s.SharedWithUserID)
	case s.ShareKey != "":
		return ByKey(s.ShareKey)
	default:
		return Addressing{}
	}
}

// IsExpired: deadline presente y estrictamente anterior a now.
func (s ProjectShare) IsExpired(now time.Time) bool {
	return s.Deadline != nil && s.Deadline.Before(now)
}

// IsEffective: ni revocado ni expirado.
func (s ProjectShare) IsEffective(now time.Time) bool {
	return !s.IsRevoked && !s.IsExpired(now)
}

type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
	StatusRevoked Status = "revoked"
)

// StatusOf es el estado derivado para los badges del panel; revoked gana sobre expired.
func StatusOf(s ProjectShare, now time.Time) Status {
	switch {
	case s.IsRevoked:
		return StatusRevoked
	case s.IsExpired(now):
		return StatusExpired
	default:
		return StatusActive
	}
}

// Requester identifica a quien intenta acceder. Cualquier combinación de campos
// puede venir poblada (p.ej. usuario logueado que además trae una share key).
type Requester struct {
	Email    string
	UserID   string
	ShareKey string
}

func (r Requester) IsEmpty() bool {
	return strings.TrimSpace(r.Email) == "" &&
		strings.TrimSpace(r.UserID) == "" &&
		strings.TrimSpace(r.ShareKey) == ""
}

// Matches: email sin distinguir mayúsculas; user id y share key exactos.
func (r Requester) Matches(s ProjectShare) bool {
	if email := normalizeEmail(r.Email); email != "" && s.SharedWithEmail != "" && strings.EqualFold(email, s.SharedWithEmail) {
		return true
	}
	if uid := strings.TrimSpace(r.UserID); uid != "" && s.SharedWithUserID == uid {
		return true
	}
	if key := strings.TrimSpace(r.ShareKey); key != "" && s.ShareKey == key {
		return true
	}
	return false
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
