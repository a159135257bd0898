package shares

import (
	"context"
	"errors"
	"strings"
	"time"

	"project-share-manager/internal/domain/permissions"
)

// Decision es el resultado de resolver todas las páginas de un proyecto.
type Decision struct {
	Permissions permissions.Set
	// RequiresApproval: algún share vigente que aplica pide aprobación.
	RequiresApproval bool
	// Matched cuenta los shares vigentes que aplicaron.
	Matched int
}

// Resolver calcula permisos efectivos. Solo lee del store.
type Resolver struct {
	reader Reader
	now    func() time.Time
}

func NewResolver(reader Reader) *Resolver {
	return &Resolver{
		reader: reader,
		now:    time.Now,
	}
}

// Resolve devuelve los permisos efectivos sobre una página. "Sin acceso" es un
// valor todo false, no un error.
func (r *Resolver) Resolve(ctx context.Context, req Requester, projectID string, page permissions.Page) (permissions.PagePermissions, error) {
	if !permissions.IsKnownPage(page) {
		return permissions.PagePermissions{}, ErrInvalidPermissions
	}
	d, err := r.ResolveDecision(ctx, req, projectID)
	if err != nil {
		return permissions.PagePermissions{}, err
	}
	return d.Permissions.Get(page), nil
}

// ResolveAll devuelve las doce páginas.
func (r *Resolver) ResolveAll(ctx context.Context, req Requester, projectID string) (permissions.Set, error) {
	d, err := r.ResolveDecision(ctx, req, projectID)
	if err != nil {
		return nil, err
	}
	return d.Permissions, nil
}

// ResolveDecision descarta shares revocados y expirados y une el resto:
// por acción gana el share más permisivo.
func (r *Resolver) ResolveDecision(ctx context.Context, req Requester, projectID string) (Decision, error) {
	out := Decision{Permissions: permissions.AllDisabledSet()}

	projectID = strings.TrimSpace(projectID)
	if projectID == "" || req.IsEmpty() {
		return out, nil
	}

	items, err := r.reader.ListForRequester(ctx, projectID, req)
	if err != nil {
		return Decision{}, err
	}

	now := r.now()
	for _, sh := range items {
		if sh.ProjectID != projectID || !req.Matches(sh) || !sh.IsEffective(now) {
			continue
		}
		out.Matched++
		if sh.RequiresApproval {
			out.RequiresApproval = true
		}
		for _, p := range permissions.Pages() {
			out.Permissions[p] = permissions.Union(out.Permissions[p], sh.Permissions.Get(p))
		}
	}
	return out, nil
}

// Redeem busca un share por key. Revocado, expirado o inexistente => ErrNotFound.
func (r *Resolver) Redeem(ctx context.Context, key string) (ProjectShare, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return ProjectShare{}, ErrNotFound
	}
	sh, err := r.reader.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ProjectShare{}, ErrNotFound
		}
		return ProjectShare{}, err
	}
	if !sh.IsEffective(r.now()) {
		return ProjectShare{}, ErrNotFound
	}
	return sh, nil
}
