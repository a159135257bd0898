package shares

import (
	"strings"
)

type AddressKind string

const (
	AddressEmail  AddressKind = "email"
	AddressUserID AddressKind = "user_id"
	AddressKey    AddressKind = "share_key"
)

// Addressing es el destinatario de un share: email, user id o share key.
// Solo se construye con ByEmail/ByUserID/ByKey, así que nunca hay dos a la vez.
type Addressing struct {
	kind  AddressKind
	value string
}

func ByEmail(email string) Addressing {
	return Addressing{kind: AddressEmail, value: normalizeEmail(email)}
}

func ByUserID(userID string) Addressing {
	return Addressing{kind: AddressUserID, value: strings.TrimSpace(userID)}
}

// ByKey usa la key dada; con key vacía el servicio genera una.
func ByKey(key string) Addressing {
	return Addressing{kind: AddressKey, value: strings.TrimSpace(key)}
}

// GeneratedKey pide una share key generada por el sistema.
func GeneratedKey() Addressing {
	return Addressing{kind: AddressKey}
}

func (a Addressing) Kind() AddressKind { return a.kind }
func (a Addressing) Value() string     { return a.value }
func (a Addressing) IsZero() bool      { return a.kind == "" }

func (a Addressing) validate() error {
	switch a.kind {
	case AddressEmail:
		if a.value == "" || !strings.Contains(a.value, "@") {
			return ErrInvalidAddressing
		}
	case AddressUserID:
		if a.value == "" {
			return ErrInvalidAddressing
		}
	case AddressKey:
		// key vacía => generar
	default:
		return ErrInvalidAddressing
	}
	return nil
}

// ParseAddressing arma el Addressing desde los campos planos del request.
// Exige exactamente uno: email, user id, share key, o generateKey=true.
func ParseAddressing(email, userID, key string, generateKey bool) (Addressing, error) {
	email = strings.TrimSpace(email)
	userID = strings.TrimSpace(userID)
	key = strings.TrimSpace(key)

	var (
		out   Addressing
		count int
	)
	if email != "" {
		out = ByEmail(email)
		count++
	}
	if userID != "" {
		out = ByUserID(userID)
		count++
	}
	if key != "" {
		out = ByKey(key)
		count++
	}
	if generateKey {
		out = GeneratedKey()
		count++
	}

	if count != 1 {
		return Addressing{}, ErrInvalidAddressing
	}
	if err := out.validate(); err != nil {
		return Addressing{}, err
	}
	return out, nil
}
