package server

import (
	"errors"
	"io"
	"net/http"
	"regexp"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"valgate/internal/core"
	"valgate/internal/core/apierrors"
	"valgate/internal/core/engine"
	"valgate/internal/core/preprocessing"
)

const (
	// HeaderValidationGroups carries a comma separated list of validation groups
	HeaderValidationGroups = "X-Validation-Groups"
	// HeaderRequestID is set on every validation response
	HeaderRequestID = "X-Request-ID"
	// QueryValidationGroups is read when the groups header is absent
	QueryValidationGroups = "groups"

	defaultMaxBodyBytes = 1 << 20
)

// HTTPServer exposes the preprocessing engine over HTTP
type HTTPServer struct {
	*Server
	engine       *engine.Engine
	metrics      *metrics
	maxBodyBytes int64
}

// NewHTTPServer creates a new HTTP server backed by the given engine
func NewHTTPServer(addr string, e *engine.Engine, log *zap.Logger) *HTTPServer {
	return &HTTPServer{
		Server:       New(addr, log),
		engine:       e,
		metrics:      newMetrics(),
		maxBodyBytes: defaultMaxBodyBytes,
	}
}

// SetMaxBodyBytes caps the size of request bodies read by the validation endpoint
func (s *HTTPServer) SetMaxBodyBytes(n int64) {
	if n > 0 {
		s.maxBodyBytes = n
	}
}

// Start serves Handler until the process is asked to stop
func (s *HTTPServer) Start() error {
	return s.ListenAndServe(s.Handler())
}

// Handler returns the router with every endpoint mounted
func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "valgate is running"})
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/profiles", s.handleProfiles)
		r.Post("/validate", s.handleValidate)
		r.Post("/validate/{profile}", s.handleValidate)
	})

	return r
}

type profileView struct {
	ID     string   `json:"id"`
	Groups []string `json:"groups"`
	Steps  []string `json:"steps"`
}

func (s *HTTPServer) handleProfiles(w http.ResponseWriter, r *http.Request) {
	profiles := s.engine.Profiles()
	views := make([]profileView, 0, len(profiles))
	for _, p := range profiles {
		view := profileView{ID: p.ID, Groups: p.Groups, Steps: make([]string, 0, len(p.Steps))}
		if view.Groups == nil {
			view.Groups = []string{}
		}
		for _, step := range p.Steps {
			view.Steps = append(view.Steps, step.Type)
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"profiles": views})
}

// handleValidate runs the profile chain over the request body.
// Succeeded → 200 with the processed body, Rejected → 422 with the recorded errors,
// Faulted → 500.
func (s *HTTPServer) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeException(w, apierrors.NewException(apierrors.Errors{
				apierrors.New(apierrors.CodeTooLarge, "", "request body exceeds %d bytes", tooLarge.Limit),
			}).WithStatus(http.StatusRequestEntityTooLarge))
			return
		}
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	groups, groupErrs := validationGroups(r)
	if !groupErrs.Empty() {
		s.writeException(w, apierrors.NewException(groupErrs))
		return
	}

	profile, err := s.resolveProfile(chi.URLParam(r, "profile"), body)
	if errors.Is(err, engine.ErrInvalidBody) {
		s.writeException(w, apierrors.NewException(apierrors.Errors{
			apierrors.New(apierrors.CodeInvalidJSON, "", "request body is not valid JSON"),
		}))
		return
	}
	if err != nil {
		s.writeException(w, apierrors.NewException(apierrors.Errors{
			apierrors.New(apierrors.CodeUnknownProfile, "", "no validation profile applies to this request"),
		}).WithStatus(http.StatusNotFound))
		return
	}
	chain, _ := s.engine.Chain(profile.ID)

	req := core.NewRequest(body, s.log.With(zap.String("profile", profile.ID)))
	req.SetMetadata("profile", profile.ID)
	w.Header().Set(HeaderRequestID, req.ID)

	res := chain.Run(req, profile.ValidationConfig(groups))
	s.metrics.observe(profile.ID, res.Outcome)

	switch res.Outcome {
	case preprocessing.Succeeded:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(req.Body)
	case preprocessing.Rejected:
		req.Log.Info("Request rejected",
			zap.Int("step", res.Step),
			zap.Int("errors", len(req.Errors)),
		)
		s.writeException(w, apierrors.NewException(req.Errors))
	case preprocessing.Faulted:
		req.Log.Error("Preprocessing failed",
			zap.Int("step", res.Step),
			zap.Error(res.Cause),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":      "internal preprocessing error",
			"request_id": req.ID,
		})
	}
}

func (s *HTTPServer) resolveProfile(id string, body []byte) (*engine.Profile, error) {
	if id == "" {
		return s.engine.FindProfile(body)
	}
	profile, ok := s.engine.Profile(id)
	if !ok {
		return nil, engine.ErrProfileNotFound
	}
	return profile, nil
}

var groupName = regexp.MustCompile(`^[A-Za-z0-9_.:-]+$`)

// validationGroups reads the groups from the header, or from the query when the header is absent
func validationGroups(r *http.Request) ([]preprocessing.Group, apierrors.Errors) {
	raw, typ, location := r.Header.Get(HeaderValidationGroups), apierrors.LocationHeader, HeaderValidationGroups
	if raw == "" {
		raw, typ, location = r.URL.Query().Get(QueryValidationGroups), apierrors.LocationQuery, QueryValidationGroups
	}

	var errs apierrors.Errors
	groups := preprocessing.ParseGroups(raw)
	for _, g := range groups {
		if !groupName.MatchString(string(g)) {
			errs.Add(apierrors.NewAt(typ, apierrors.CodeInvalidGroup, location, "invalid validation group %q", g))
		}
	}
	return groups, errs
}

func (s *HTTPServer) writeException(w http.ResponseWriter, ex *apierrors.Exception) {
	data, err := apierrors.Marshal(ex.Errors)
	if err != nil {
		s.log.Error("Failed to encode errors", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ex.Status)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
