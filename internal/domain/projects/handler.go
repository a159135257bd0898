package projects

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"project-share-manager/internal/domain/shares"
	"project-share-manager/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service, resolver *shares.Resolver) {
	r.Post("/projects", createProjectHandler(svc))
	r.Get("/projects", listProjectsHandler(svc))

	// Dueño, o invitado con un share vigente (por usuario o por share key)
	r.Get("/projects/{projectID}", getProjectHandler(svc, resolver))
}

type createProjectRequest struct {
	Name string `json:"name"`
}

type projectResponse struct {
	ID          string    `json:"id"`
	OwnerUserID string    `json:"owner_user_id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type projectEnvelope struct {
	Success bool            `json:"success"`
	Project projectResponse `json:"project"`
}

type projectListEnvelope struct {
	Success  bool              `json:"success"`
	Projects []projectResponse `json:"projects"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// createProjectHandler godoc
// @Summary Crear proyecto
// @Description Registra un proyecto cuyo dueño es el usuario autenticado.
// @Tags projects
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createProjectRequest true "Nombre del proyecto"
// @Success 201 {object} projectEnvelope
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Router /projects [post]
func createProjectHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req createProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		p, err := svc.Create(r.Context(), claims.UserID, CreateInput{Name: req.Name})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				writeError(w, http.StatusBadRequest, "name required")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusCreated, projectEnvelope{Success: true, Project: toProjectResponse(p)})
	}
}

// listProjectsHandler godoc
// @Summary Mis proyectos
// @Description Proyectos cuyo dueño es el usuario autenticado. Los compartidos están en /me/shares.
// @Tags projects
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {object} projectListEnvelope
// @Failure 401 {object} errorResponse
// @Router /projects [get]
func listProjectsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]projectResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toProjectResponse(p))
		}
		writeJSON(w, http.StatusOK, projectListEnvelope{Success: true, Projects: out})
	}
}

// getProjectHandler godoc
// @Summary Ver proyecto
// @Description El dueño siempre puede verlo. Un invitado necesita al menos un share vigente (por email, user id o X-Share-Key).
// @Tags projects
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Share-Key header string false "Share key de un link compartido"
// @Param Authorization header string false "Bearer token en producción"
// @Param projectID path string true "ID del proyecto"
// @Success 200 {object} projectEnvelope
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /projects/{projectID} [get]
func getProjectHandler(svc *Service, resolver *shares.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")
		p, err := svc.GetByID(r.Context(), projectID)
		if err != nil {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}

		req := shares.Requester{ShareKey: middleware.GetShareKey(r.Context())}
		claims, ok := middleware.GetClaims(r.Context())
		if ok {
			req.Email = claims.Email
			req.UserID = claims.UserID
		}

		// Owner bypass
		if !ok || p.OwnerUserID != claims.UserID {
			d, err := resolver.ResolveDecision(r.Context(), req, p.ID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if d.Matched == 0 {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
		}

		writeJSON(w, http.StatusOK, projectEnvelope{Success: true, Project: toProjectResponse(p)})
	}
}

func toProjectResponse(p Project) projectResponse {
	return projectResponse{
		ID:          p.ID,
		OwnerUserID: p.OwnerUserID,
		Name:        p.Name,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}
