package projects

import "time"

// Project es el registro mínimo de un proyecto: alcanza para saber quién es el dueño.
type Project struct {
	ID          string
	OwnerUserID string
	Name        string

	CreatedAt time.Time
	UpdatedAt time.Time
}
