package activity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"project-share-manager/internal/middleware"
)

// ProjectOwnerLookup evita importar el paquete projects.
type ProjectOwnerLookup interface {
	OwnerOf(ctx context.Context, projectID string) (string, error)
}

func RegisterRoutes(r chi.Router, svc *Service, owners ProjectOwnerLookup) {
	r.Get("/project-shares/activity", listActivityHandler(svc, owners))
}

type entryResponse struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	ShareID     string    `json:"share_id"`
	Type        Type      `json:"type"`
	ActorUserID string    `json:"actor_user_id,omitempty"`
	Grantee     string    `json:"grantee,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type listResponse struct {
	Success bool            `json:"success"`
	Entries []entryResponse `json:"entries"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// listActivityHandler godoc
// @Summary Historial de shares de un proyecto
// @Description Lista altas, cambios, revocaciones y borrados de shares del proyecto, más reciente primero. Solo el dueño del proyecto.
// @Tags project-shares
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param project_id query string true "ID del proyecto"
// @Param share_id query string false "Filtrar por share"
// @Param types query string false "CSV de tipos (SHARE_CREATED,SHARE_UPDATED,SHARE_REVOKED,SHARE_DELETED)"
// @Param from query string false "occurred_at mínimo (RFC3339)"
// @Param to query string false "occurred_at máximo (RFC3339)"
// @Param limit query int false "Máximo de entradas. Por defecto 50, se recorta a 200"
// @Success 200 {object} listResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /project-shares/activity [get]
func listActivityHandler(svc *Service, owners ProjectOwnerLookup) http.HandlerFunc {
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

		ownerID, err := owners.OwnerOf(r.Context(), projectID)
		if err != nil || strings.TrimSpace(ownerID) == "" {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		if ownerID != claims.UserID {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		items, err := svc.ListByProject(r.Context(), projectID, filter)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]entryResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toEntryResponse(e))
		}
		writeJSON(w, http.StatusOK, listResponse{Success: true, Entries: out})
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	q := r.URL.Query()

	// Un limit mayor al máximo lo recorta el service.
	filter := ListFilter{Limit: defaultLimit}
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return ListFilter{}, errors.New("limit must be a positive integer")
		}
		filter.Limit = n
	}

	filter.ShareID = strings.TrimSpace(q.Get("share_id"))

	if v := strings.TrimSpace(q.Get("types")); v != "" {
		for _, p := range strings.Split(v, ",") {
			t := Type(strings.ToUpper(strings.TrimSpace(p)))
			if t == "" {
				continue
			}
			if !IsKnownType(t) {
				return ListFilter{}, errors.New("unknown activity type " + string(t))
			}
			filter.Types = append(filter.Types, t)
		}
	}

	if v := strings.TrimSpace(q.Get("from")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("from must be RFC3339")
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("to must be RFC3339")
		}
		filter.To = &t
	}

	return filter, nil
}

func toEntryResponse(e Entry) entryResponse {
	return entryResponse{
		ID:          e.ID,
		ProjectID:   e.ProjectID,
		ShareID:     e.ShareID,
		Type:        e.Type,
		ActorUserID: e.ActorUserID,
		Grantee:     e.Grantee,
		OccurredAt:  e.OccurredAt,
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
