package http

import (
	"errors"
	"net/http"
	"strings"

	"dompet/internal/core"
	"dompet/internal/log"
	"dompet/internal/services"
)

// HeaderUserID carries the authenticated user, set by the auth gateway in
// front of the service.
const HeaderUserID = "X-User-ID"

// userID returns the caller's id, or "" when the request is anonymous.
func userID(r *http.Request) string {
	return sanitizeInput(r.Header.Get(HeaderUserID))
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// snapshot loads the caller's collections through the cache. Anonymous
// callers get an empty snapshot and the store is not touched.
func (s *Server) snapshot(r *http.Request) (services.Snapshot, error) {
	uid := userID(r)
	if uid == "" {
		return services.NewSnapshotLoader(nil).Load(r.Context(), "")
	}
	return s.snapshots.Get(r.Context(), uid)
}

// writeError maps domain errors to statuses. Validation never reaches the
// store, so a 422 means nothing was written.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var resp *JSONResponseBuilder
	switch {
	case errors.Is(err, errBadRequest):
		resp = BadRequestError(err.Error())
	case errors.Is(err, core.ErrUnauthenticated):
		resp = UnauthorizedError()
	case core.IsValidationError(err):
		resp = UnprocessableEntityError(err.Error())
	case errors.Is(err, core.ErrNotFound):
		resp = NotFoundError(err.Error())
	case errors.Is(err, core.ErrDuplicateBudget), errors.Is(err, core.ErrGoalCompleted):
		resp = ConflictError(err.Error())
	case core.IsStorageError(err):
		s.logger.LogError(r.Context(), "Storage failure", err, log.ComponentStorage, op, log.NewFields().WithUser(userID(r)))
		resp = ServiceUnavailableError("storage unavailable, nothing was changed")
	default:
		s.logger.LogError(r.Context(), "Request failed", err, log.ComponentHTTP, op, log.NewFields().WithUser(userID(r)))
		resp = InternalServerError("internal error")
	}
	resp.Write(w)
}

func writeJSON(w http.ResponseWriter, v any) {
	NewJSONResponse().Data(v).Write(w)
}
