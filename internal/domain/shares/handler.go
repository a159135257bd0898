package shares

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"project-share-manager/internal/domain/permissions"
	"project-share-manager/internal/middleware"
)

// ProjectOwnerLookup evita importar el paquete projects (rompe ciclos).
type ProjectOwnerLookup interface {
	OwnerOf(ctx context.Context, projectID string) (string, error)
}

var validate = newValidator()

// newValidator reporta los errores con el nombre JSON del campo.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func RegisterRoutes(r chi.Router, svc *Service, resolver *Resolver, owners ProjectOwnerLookup) {
	// Panel de control del dueño
	r.Get("/project-shares", listSharesHandler(svc, owners))
	r.Post("/project-shares", createShareHandler(svc, owners))
	r.Patch("/project-shares/{shareID}", updateShareHandler(svc, owners))
	r.Delete("/project-shares/{shareID}", deleteShareHandler(svc, owners))

	// Permisos efectivos del requester (usuario logueado y/o share key)
	r.Get("/projects/{projectID}/access", accessHandler(resolver, owners))

	// Link compartido
	r.Get("/share-links/{key}", redeemHandler(resolver))

	// Compartidos conmigo
	r.Get("/me/shares", listMySharesHandler(svc))
}

type createShareRequest struct {
	ProjectID        string                     `json:"project_id" validate:"required,max=128"`
	SharedWithEmail  string                     `json:"shared_with_email" validate:"omitempty,email,max=320"`
	SharedWithUserID string                     `json:"shared_with_user_id" validate:"omitempty,max=128"`
	ShareKey         string                     `json:"share_key" validate:"omitempty,min=8,max=128"`
	GenerateShareKey bool                       `json:"generate_share_key"`
	Deadline         *time.Time                 `json:"deadline"`
	RequiresApproval bool                       `json:"requires_approval"`
	Permissions      map[string]map[string]bool `json:"permissions"`
}

// updateShareRequest solo se usa para la documentación; el PATCH se decodifica
// campo por campo para distinguir "deadline": null de ausente.
type updateShareRequest struct {
	Permissions      map[string]map[string]bool `json:"permissions"`
	Deadline         *time.Time                 `json:"deadline"`
	RequiresApproval *bool                      `json:"requires_approval"`
}

type shareResponse struct {
	ID               string          `json:"id"`
	ProjectID        string          `json:"project_id"`
	SharedWithEmail  string          `json:"shared_with_email,omitempty"`
	SharedWithUserID string          `json:"shared_with_user_id,omitempty"`
	ShareKey         string          `json:"share_key,omitempty"`
	Deadline         *time.Time      `json:"deadline,omitempty"`
	RequiresApproval bool            `json:"requires_approval"`
	IsRevoked        bool            `json:"is_revoked"`
	Status           Status          `json:"status"`
	Permissions      permissions.Set `json:"permissions"`
	CreatedBy        string          `json:"created_by"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type shareEnvelope struct {
	Success bool          `json:"success"`
	Share   shareResponse `json:"share"`
}

type shareListEnvelope struct {
	Success bool            `json:"success"`
	Shares  []shareResponse `json:"shares"`
}

type accessResponse struct {
	Success          bool             `json:"success"`
	ProjectID        string           `json:"project_id"`
	Owner            bool             `json:"owner"`
	RequiresApproval bool             `json:"requires_approval"`
	Page             permissions.Page `json:"page,omitempty"`
	Permissions      any              `json:"permissions"`
}

type redeemResponse struct {
	Success          bool            `json:"success"`
	ShareID          string          `json:"share_id"`
	ProjectID        string          `json:"project_id"`
	Status           Status          `json:"status"`
	Deadline         *time.Time      `json:"deadline,omitempty"`
	RequiresApproval bool            `json:"requires_approval"`
	Permissions      permissions.Set `json:"permissions"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// listSharesHandler godoc
// @Summary Listar shares de un proyecto
// @Description Devuelve todos los shares del proyecto (activos, expirados y revocados) con su status. Solo el dueño.
// @Tags project-shares
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param project_id query string true "ID del proyecto"
// @Success 200 {object} shareListEnvelope
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /project-shares [get]
func listSharesHandler(svc *Service, owners ProjectOwnerLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		projectID := strings.TrimSpace(r.URL.Query().Get("project_id"))
		if projectID == "" {
			writeError(w, http.StatusBadRequest, "project_id required")
			return
		}
		if !requireOwner(w, r, owners, projectID, claims.UserID) {
			return
		}

		items, err := svc.ListByProject(r.Context(), projectID)
		if err != nil {
			writeShareError(w, err)
			return
		}

		now := svc.Now()
		out := make([]shareResponse, 0, len(items))
		for _, sh := range items {
			out = append(out, toShareResponse(sh, now))
		}
		writeJSON(w, http.StatusOK, shareListEnvelope{Success: true, Shares: out})
	}
}

// createShareHandler godoc
// @Summary Crear share
// @Description Comparte el proyecto por email, user id o share key. Exactamente uno de shared_with_email, shared_with_user_id, share_key o generate_share_key=true. Solo el dueño.
// @Tags project-shares
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createShareRequest true "Share; deadline en RFC3339; permissions página -> acción -> bool"
// @Success 201 {object} shareEnvelope
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Failure 503 {object} errorResponse
// @Router /project-shares [post]
func createShareHandler(svc *Service, owners ProjectOwnerLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req createShareRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, validationMessage(err))
			return
		}

		projectID := strings.TrimSpace(req.ProjectID)
		if !requireOwner(w, r, owners, projectID, claims.UserID) {
			return
		}

		addr, err := ParseAddressing(req.SharedWithEmail, req.SharedWithUserID, req.ShareKey, req.GenerateShareKey)
		if err != nil {
			writeShareError(w, err)
			return
		}

		sh, err := svc.Create(r.Context(), CreateInput{
			ProjectID:  projectID,
			CreatedBy:  claims.UserID,
			Addressing: addr,
			Draft: ShareDraft{
				Permissions:      req.Permissions,
				Deadline:         req.Deadline,
				RequiresApproval: req.RequiresApproval,
			},
		})
		if err != nil {
			writeShareError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, shareEnvelope{Success: true, Share: toShareResponse(sh, svc.Now())})
	}
}

// updateShareHandler godoc
// @Summary Editar share
// @Description Cambia permisos, deadline (null la quita) o requires_approval. El destinatario no se puede cambiar. Un share revocado no se edita.
// @Tags project-shares
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param shareID path string true "ID del share"
// @Param payload body updateShareRequest true "Campos a cambiar"
// @Success 200 {object} shareEnvelope
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /project-shares/{shareID} [patch]
func updateShareHandler(svc *Service, owners ProjectOwnerLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		current, ok := loadOwnedShare(w, r, svc, owners, claims.UserID)
		if !ok {
			return
		}

		// Decodificamos a map para detectar presencia de "deadline" (null = quitar).
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		patch, err := parseSharePatch(raw)
		if err != nil {
			writeShareError(w, err)
			return
		}

		sh, err := svc.Update(r.Context(), current.ID, claims.UserID, patch)
		if err != nil {
			writeShareError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, shareEnvelope{Success: true, Share: toShareResponse(sh, svc.Now())})
	}
}

// deleteShareHandler godoc
// @Summary Revocar o borrar share
// @Description Con revoke=true revoca el share (no idempotente, 409 si ya estaba revocado). Sin revoke borra definitivamente un share ya revocado (409 si no lo está).
// @Tags project-shares
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param shareID path string true "ID del share"
// @Param revoke query bool false "true para revocar en vez de borrar"
// @Success 200 {object} shareEnvelope "revoke=true"
// @Success 200 {object} successResponse "borrado"
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /project-shares/{shareID} [delete]
func deleteShareHandler(svc *Service, owners ProjectOwnerLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		current, ok := loadOwnedShare(w, r, svc, owners, claims.UserID)
		if !ok {
			return
		}

		if strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("revoke")), "true") {
			sh, err := svc.Revoke(r.Context(), current.ID, claims.UserID)
			if err != nil {
				writeShareError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, shareEnvelope{Success: true, Share: toShareResponse(sh, svc.Now())})
			return
		}

		if err := svc.Delete(r.Context(), current.ID, claims.UserID); err != nil {
			writeShareError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

// accessHandler godoc
// @Summary Permisos efectivos sobre un proyecto
// @Description Resuelve los permisos del requester (email/user id del token y share key de X-Share-Key o ?share_key=). El dueño tiene todo. Sin acceso devuelve todo en false.
// @Tags access
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-User-Email header string false "Solo en modo dev, email del usuario"
// @Param X-Share-Key header string false "Share key de un link compartido"
// @Param Authorization header string false "Bearer token en producción"
// @Param projectID path string true "ID del proyecto"
// @Param page query string false "Página (screenplay, timeline, ...). Sin page devuelve las doce"
// @Success 200 {object} accessResponse
// @Failure 400 {object} errorResponse
// @Router /projects/{projectID}/access [get]
func accessHandler(resolver *Resolver, owners ProjectOwnerLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := strings.TrimSpace(chi.URLParam(r, "projectID"))

		var page permissions.Page
		if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
			p, err := permissions.ParsePage(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			page = p
		}

		req := Requester{ShareKey: middleware.GetShareKey(r.Context())}
		claims, hasClaims := middleware.GetClaims(r.Context())
		if hasClaims {
			req.Email = claims.Email
			req.UserID = claims.UserID
		}

		resp := accessResponse{Success: true, ProjectID: projectID, Page: page}

		// El dueño no necesita share. Si el lookup falla lo tratamos como "no dueño".
		if hasClaims && strings.TrimSpace(claims.UserID) != "" {
			if ownerID, err := owners.OwnerOf(r.Context(), projectID); err == nil && ownerID == claims.UserID {
				resp.Owner = true
				resp.Permissions = pickPage(permissions.AllEnabledSet(), page)
				writeJSON(w, http.StatusOK, resp)
				return
			}
		}

		d, err := resolver.ResolveDecision(r.Context(), req, projectID)
		if err != nil {
			writeShareError(w, err)
			return
		}
		resp.RequiresApproval = d.RequiresApproval
		resp.Permissions = pickPage(d.Permissions, page)
		writeJSON(w, http.StatusOK, resp)
	}
}

// redeemHandler godoc
// @Summary Abrir un link compartido
// @Description Devuelve proyecto y permisos de una share key vigente. Key desconocida, revocada o expirada => 404.
// @Tags access
// @Produce json
// @Param key path string true "Share key"
// @Success 200 {object} redeemResponse
// @Failure 404 {object} errorResponse
// @Router /share-links/{key} [get]
func redeemHandler(resolver *Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sh, err := resolver.Redeem(r.Context(), chi.URLParam(r, "key"))
		if err != nil {
			writeShareError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, redeemResponse{
			Success:          true,
			ShareID:          sh.ID,
			ProjectID:        sh.ProjectID,
			Status:           StatusOf(sh, resolver.now()),
			Deadline:         sh.Deadline,
			RequiresApproval: sh.RequiresApproval,
			Permissions:      sh.Permissions,
		})
	}
}

// listMySharesHandler godoc
// @Summary Shares dirigidos a mí
// @Description Shares cuyo destinatario es el email o el user id del usuario autenticado, en todos los proyectos.
// @Tags project-shares
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-User-Email header string false "Solo en modo dev, email del usuario"
// @Param Authorization header string false "Bearer token en producción"
// @Param status query string false "CSV de status (active,expired,revoked)"
// @Success 200 {object} shareListEnvelope
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Router /me/shares [get]
func listMySharesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || (strings.TrimSpace(claims.UserID) == "" && strings.TrimSpace(claims.Email) == "") {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		allowed, err := parseStatusFilter(r.URL.Query().Get("status"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		items, err := svc.ListSharedWith(r.Context(), Requester{Email: claims.Email, UserID: claims.UserID})
		if err != nil {
			writeShareError(w, err)
			return
		}

		now := svc.Now()
		out := make([]shareResponse, 0, len(items))
		for _, sh := range items {
			resp := toShareResponse(sh, now)
			if len(allowed) > 0 {
				if _, ok := allowed[resp.Status]; !ok {
					continue
				}
			}
			// El destinatario no ve la key de otro share por este listado.
			resp.ShareKey = ""
			out = append(out, resp)
		}
		writeJSON(w, http.StatusOK, shareListEnvelope{Success: true, Shares: out})
	}
}

// requireOwner escribe 404/403 y devuelve false si el usuario no es dueño.
func requireOwner(w http.ResponseWriter, r *http.Request, owners ProjectOwnerLookup, projectID, userID string) bool {
	ownerID, err := owners.OwnerOf(r.Context(), projectID)
	if err != nil || strings.TrimSpace(ownerID) == "" {
		writeError(w, http.StatusNotFound, "project not found")
		return false
	}
	if ownerID != userID {
		writeError(w, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}

func loadOwnedShare(w http.ResponseWriter, r *http.Request, svc *Service, owners ProjectOwnerLookup, userID string) (ProjectShare, bool) {
	sh, err := svc.Get(r.Context(), chi.URLParam(r, "shareID"))
	if err != nil {
		writeShareError(w, err)
		return ProjectShare{}, false
	}
	if !requireOwner(w, r, owners, sh.ProjectID, userID) {
		return ProjectShare{}, false
	}
	return sh, true
}

var immutableFields = []string{
	"project_id",
	"shared_with_email",
	"shared_with_user_id",
	"share_key",
	"generate_share_key",
}

func parseSharePatch(raw map[string]json.RawMessage) (SharePatch, error) {
	var patch SharePatch

	for _, f := range immutableFields {
		if _, exists := raw[f]; exists {
			return SharePatch{}, fmt.Errorf("%w: %s cannot be changed", ErrInvalidInput, f)
		}
	}

	for k, v := range raw {
		switch k {
		case "permissions":
			var p map[string]map[string]bool
			if err := json.Unmarshal(v, &p); err != nil {
				return SharePatch{}, fmt.Errorf("%w: permissions must be an object of page -> action -> bool", ErrInvalidPermissions)
			}
			if p == nil {
				p = map[string]map[string]bool{}
			}
			patch.Permissions = p
		case "deadline":
			patch.Deadline.Present = true
			if string(v) == "null" {
				continue
			}
			var t time.Time
			if err := json.Unmarshal(v, &t); err != nil {
				return SharePatch{}, fmt.Errorf("%w: deadline must be RFC3339 or null", ErrInvalidInput)
			}
			patch.Deadline.Value = &t
		case "requires_approval":
			var b bool
			if err := json.Unmarshal(v, &b); err != nil {
				return SharePatch{}, fmt.Errorf("%w: requires_approval must be a bool", ErrInvalidInput)
			}
			patch.RequiresApproval = &b
		default:
			return SharePatch{}, fmt.Errorf("%w: unknown field %s", ErrInvalidInput, k)
		}
	}
	return patch, nil
}

func pickPage(s permissions.Set, page permissions.Page) any {
	if page == "" {
		return s
	}
	return s.Get(page)
}

func toShareResponse(sh ProjectShare, now time.Time) shareResponse {
	perms := sh.Permissions
	if perms == nil {
		perms = permissions.Set{}
	}
	return shareResponse{
		ID:               sh.ID,
		ProjectID:        sh.ProjectID,
		SharedWithEmail:  sh.SharedWithEmail,
		SharedWithUserID: sh.SharedWithUserID,
		ShareKey:         sh.ShareKey,
		Deadline:         sh.Deadline,
		RequiresApproval: sh.RequiresApproval,
		IsRevoked:        sh.IsRevoked,
		Status:           StatusOf(sh, now),
		Permissions:      perms,
		CreatedBy:        sh.CreatedBy,
		CreatedAt:        sh.CreatedAt,
		UpdatedAt:        sh.UpdatedAt,
	}
}

// parseStatusFilter acepta un CSV de active, expired y revoked.
func parseStatusFilter(raw string) (map[Status]struct{}, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	out := map[Status]struct{}{}
	for _, p := range strings.Split(raw, ",") {
		s := Status(strings.ToLower(strings.TrimSpace(p)))
		switch s {
		case "":
			continue
		case StatusActive, StatusExpired, StatusRevoked:
			out[s] = struct{}{}
		default:
			return nil, errors.New("unknown share status " + string(s))
		}
	}
	return out, nil
}

func writeShareError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidAddressing):
		writeError(w, http.StatusBadRequest, ErrInvalidAddressing.Error())
	case errors.Is(err, ErrInvalidPermissions), errors.Is(err, ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, ErrNotFound.Error())
	case errors.Is(err, ErrAlreadyRevoked), errors.Is(err, ErrNotRevoked), errors.Is(err, ErrShareKeyTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrKeyGenerationExhausted):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return "invalid field " + fe.Field() + ": " + fe.Tag()
	}
	return "invalid request"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}
