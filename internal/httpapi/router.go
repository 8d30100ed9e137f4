// Package httpapi exposes the assistant gateway as JSON over HTTP for the dashboards.
package httpapi

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	assistantv1 "github.com/Reyansh-Niranjan/CogniSecure/api/assistant/v1"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/assistant/handler"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/gateway"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/server/interceptors"
)

// maxBodyBytes bounds request bodies; queries are short free text.
const maxBodyBytes = 1 << 20

// Gateway is the subset of *gateway.Gateway served over HTTP.
type Gateway interface {
	Query(ctx context.Context, req gateway.QueryRequest) (*gateway.QueryResult, error)
	RetryQuery(ctx context.Context, req gateway.RetryRequest) (*gateway.QueryResult, error)
	ListQueryLogs(ctx context.Context, req gateway.ListLogsRequest) (*gateway.LogPage, error)
	Logout(ctx context.Context, token string) error
}

// HealthChecker reports dependency readiness.
type HealthChecker interface {
	Check(ctx context.Context) error
}

type api struct {
	gw     Gateway
	health HealthChecker
	log    zerolog.Logger
}

// NewRouter returns the HTTP handler. health may be nil, in which case /healthz always reports ok.
// X-Forwarded-For and X-Real-IP set the recorded client address only when trustProxyHeaders is true;
// otherwise the connection's remote address is used.
func NewRouter(gw Gateway, health HealthChecker, log zerolog.Logger, trustProxyHeaders bool) http.Handler {
	a := &api{gw: gw, health: health, log: log}

	r := chi.NewRouter()
	if trustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(withClientIP)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", a.healthz)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/assistant/query", a.query)
		r.Post("/assistant/logs/{id}/retry", a.retry)
		r.Get("/assistant/logs", a.listLogs)
		r.Post("/sessions/logout", a.logout)
	})
	return otelhttp.NewHandler(r, "cognisecure-http")
}

type queryBody struct {
	Query            string   `json:"query"`
	ContextRecordIDs []string `json:"context_record_ids"`
}

type answerBody struct {
	Success          bool     `json:"success"`
	Answer           string   `json:"answer"`
	Model            string   `json:"model"`
	TokensUsed       int      `json:"tokens_used"`
	AuditEntryID     string   `json:"audit_entry_id,omitempty"`
	ContextRecordIDs []string `json:"context_record_ids"`
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Blocked bool   `json:"blocked"`
}

type logsBody struct {
	Logs          []*assistantv1.QueryLog `json:"logs"`
	NextPageToken string                  `json:"next_page_token,omitempty"`
}

func (a *api) query(w http.ResponseWriter, r *http.Request) {
	var body queryBody
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		a.writeError(w, &gateway.Error{Kind: gateway.KindInvalidArgument, Message: "invalid JSON body"})
		return
	}
	res, err := a.gw.Query(r.Context(), gateway.QueryRequest{
		SessionToken:     bearer(r),
		Query:            body.Query,
		ContextRecordIDs: body.ContextRecordIDs,
		ClientIP:         interceptors.ClientIP(r.Context()),
	})
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnswer(res))
}

func (a *api) retry(w http.ResponseWriter, r *http.Request) {
	res, err := a.gw.RetryQuery(r.Context(), gateway.RetryRequest{
		SessionToken: bearer(r),
		EntryID:      chi.URLParam(r, "id"),
		ClientIP:     interceptors.ClientIP(r.Context()),
	})
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnswer(res))
}

func (a *api) listLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var size int64
	if raw := q.Get("page_size"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			a.writeError(w, &gateway.Error{Kind: gateway.KindInvalidArgument, Message: "page_size must be a 32-bit integer"})
			return
		}
		size = n
	}
	page, err := a.gw.ListQueryLogs(r.Context(), gateway.ListLogsRequest{
		SessionToken: bearer(r),
		OfficerID:    q.Get("officer_id"),
		PageSize:     int32(size),
		PageToken:    q.Get("page_token"),
	})
	if err != nil {
		a.writeError(w, err)
		return
	}
	out := logsBody{Logs: make([]*assistantv1.QueryLog, 0, len(page.Entries)), NextPageToken: page.NextPageToken}
	for _, e := range page.Entries {
		out.Logs = append(out.Logs, handler.EntryToProto(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *api) logout(w http.ResponseWriter, r *http.Request) {
	token := bearer(r)
	if token == "" {
		a.writeError(w, &gateway.Error{Kind: gateway.KindUnauthenticated, Message: "missing or invalid authorization"})
		return
	}
	if err := a.gw.Logout(r.Context(), token); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) healthz(w http.ResponseWriter, r *http.Request) {
	if a.health != nil {
		if err := a.health.Check(r.Context()); err != nil {
			a.log.Warn().Err(err).Msg("healthz")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *api) writeError(w http.ResponseWriter, err error) {
	gerr, ok := gateway.AsError(err)
	if !ok {
		a.log.Error().Err(err).Msg("unclassified gateway error")
		gerr = &gateway.Error{Kind: gateway.KindInternal, Message: "Internal error"}
	}
	writeJSON(w, StatusFor(gerr.Kind), errorBody{Success: false, Error: gerr.Message, Blocked: gerr.Blocked})
}

// StatusFor maps a gateway error kind to an HTTP status code.
func StatusFor(kind gateway.Kind) int {
	switch kind {
	case gateway.KindInvalidArgument:
		return http.StatusBadRequest
	case gateway.KindUnauthenticated:
		return http.StatusUnauthorized
	case gateway.KindPermissionDenied:
		return http.StatusForbidden
	case gateway.KindRateLimited:
		return http.StatusTooManyRequests
	case gateway.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func toAnswer(res *gateway.QueryResult) answerBody {
	ids := res.ContextIDs
	if ids == nil {
		ids = []string{}
	}
	return answerBody{
		Success:          true,
		Answer:           res.Answer,
		Model:            res.Model,
		TokensUsed:       res.TokensUsed,
		AuditEntryID:     res.AuditEntryID,
		ContextRecordIDs: ids,
	}
}

func bearer(r *http.Request) string {
	return interceptors.ParseBearer(r.Header.Get("Authorization"))
}

// withClientIP stores the request's remote address (rewritten by chi's RealIP middleware when proxy
// headers are trusted), so the gateway sees the same client address on both transports.
func withClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if host = strings.TrimSpace(host); host != "" {
			r = r.WithContext(interceptors.WithClientIP(r.Context(), host))
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
