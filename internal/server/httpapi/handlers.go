package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/skillkeeper/internal/logging"
	"github.com/dmitrijs2005/skillkeeper/internal/server/apperr"
	"github.com/dmitrijs2005/skillkeeper/internal/server/models"
	"github.com/dmitrijs2005/skillkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type SkillService interface {
	FetchByID(ctx context.Context, skillID int64) (*models.Skill, error)
	FetchAll(ctx context.Context) ([]*models.Skill, error)
	Create(ctx context.Context, payload []byte) (*services.AddedResult, error)
	Update(ctx context.Context, skillID int64, payload []byte) (*services.UpdatedResult, error)
	Remove(ctx context.Context, skillID int64) (*services.DeletedResult, error)
}

type UserService interface {
	Register(ctx context.Context, payload []byte) (*services.AddedResult, error)
	Login(ctx context.Context, payload []byte) (*services.LoginResult, error)
	ResolveIdentity(ctx context.Context, token string) (*models.UserView, error)
	CurrentUser(identity *models.UserView) (*models.UserView, error)
	Logout(identity *models.UserView) (*services.MessageResult, error)
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type handlers struct {
	skills SkillService
	users  UserService
	db     Pinger
	logger logging.Logger
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.Request("request body too large")
		}
		return nil, apperr.Request("cannot read request body")
	}
	return body, nil
}

// respond writes v on success and the classified error otherwise.
func respond[T any](w http.ResponseWriter, v T, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *handlers) getSkill(w http.ResponseWriter, r *http.Request) {
	id, err := services.ParseSkillID(chi.URLParam(r, "skill_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	skill, err := h.skills.FetchByID(r.Context(), id)
	respond(w, skill, err)
}

func (h *handlers) listSkills(w http.ResponseWriter, r *http.Request) {
	list, err := h.skills.FetchAll(r.Context())
	respond(w, list, err)
}

func (h *handlers) createSkill(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.skills.Create(r.Context(), body)
	respond(w, res, err)
}

func (h *handlers) updateSkill(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := services.ParseSkillID(chi.URLParam(r, "skill_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.skills.Update(r.Context(), id, body)
	respond(w, res, err)
}

func (h *handlers) deleteSkill(w http.ResponseWriter, r *http.Request) {
	id, err := services.ParseSkillID(chi.URLParam(r, "skill_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.skills.Remove(r.Context(), id)
	respond(w, res, err)
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.users.Register(r.Context(), body)
	respond(w, res, err)
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.users.Login(r.Context(), body)
	respond(w, res, err)
}

func (h *handlers) currentUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.CurrentUser(IdentityFromContext(r.Context()))
	respond(w, u, err)
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	res, err := h.users.Logout(IdentityFromContext(r.Context()))
	respond(w, res, err)
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn(r.Context(), "health check failed", "err", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("Service Unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorBody{Message: "Not found"})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorBody{Message: "Method not allowed"})
}
