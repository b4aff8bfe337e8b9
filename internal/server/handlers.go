package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/deplist/pkg/archive"
	"github.com/matzehuels/deplist/pkg/buildinfo"
	"github.com/matzehuels/deplist/pkg/deplist"
	"github.com/matzehuels/deplist/pkg/errors"
	"github.com/matzehuels/deplist/pkg/pipeline"
)

// contentTypes maps render formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatJSON: "application/json",
}

// ResolveResponse is the body of a successful /v1/resolve.
type ResolveResponse struct {
	Plan     *deplist.Plan `json:"plan"`
	PlanHash string        `json:"plan_hash"`
	Cached   bool          `json:"cached"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Get()})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"fields":   deplist.FieldNames(),
		"defaults": deplist.DefaultOptions().Map(),
	})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.decodeOptions(w, r)
	if !ok {
		return
	}
	opts.Formats = nil

	plan, hash, hit, err := s.runner.ResolveWithCacheInfo(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("X-Cache", cacheStatus(hit))
	writeJSON(w, http.StatusOK, ResolveResponse{Plan: plan, PlanHash: hash, Cached: hit})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.decodeOptions(w, r)
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	opts.Formats = []string{format}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Plan-ID", res.Plan.ID)
	w.Header().Set("X-Cache", cacheStatus(res.CacheInfo.RenderHit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	if s.runner.Archive == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "plan archive is not configured"))
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	list, err := s.runner.Archive.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []archive.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": list})
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	if s.runner.Archive == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "plan archive is not configured"))
		return
	}
	p, err := s.runner.Archive.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) decodeOptions(w http.ResponseWriter, r *http.Request) (pipeline.Options, bool) {
	var opts pipeline.Options
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return opts, false
	}
	opts.Logger = s.logger.With("request_id", RequestID(r.Context()))
	return opts, true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: msg, RequestID: RequestID(r.Context())})
}

// statusFor maps error codes to HTTP status codes. Resolution failures are
// well-formed requests the repository cannot satisfy.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidSpec, errors.ErrCodeInvalidPackage,
		errors.ErrCodeInvalidVersion, errors.ErrCodeMalformedOptions:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errors.ErrCodeAllMasked, errors.ErrCodeUseRequirementsNotMet, errors.ErrCodeCircularDependency,
		errors.ErrCodeBlockConflict, errors.ErrCodeDowngradeNotAllowed, errors.ErrCodeNoDestination,
		errors.ErrCodeSlotConflict:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNetwork:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
