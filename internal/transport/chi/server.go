package chi

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/envie-local/envie/internal/domain"
	"github.com/envie-local/envie/internal/domain/establishment"
	"github.com/envie-local/envie/internal/domain/search/request"
	"github.com/envie-local/envie/internal/domain/search/result"
	logpkg "github.com/envie-local/envie/internal/logger"
	healthuc "github.com/envie-local/envie/internal/usecase/health"
)

// Client-facing messages.
const (
	msgEnvieRequired    = "Paramètre 'envie' requis"
	msgNoKeywords       = "Aucun mot-clé significatif trouvé"
	msgInvalidParameter = "Paramètre invalide"
	msgRateLimited      = "Trop de requêtes"
	msgSearchFailed     = "Erreur lors de la recherche"
	msgNotFound         = "Ressource introuvable"
	msgMethodNotAllowed = "Méthode non autorisée"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Searcher runs envie searches.
type Searcher interface {
	SearchEnvie(ctx context.Context, req *request.Envie) (result.Page, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server serves the HTTP API.
type Server struct {
	search        Searcher
	health        HealthChecker
	defaultRadius float64
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. defaultRadiusKm applies when rayon is omitted.
func NewServer(search Searcher, health HealthChecker, defaultRadiusKm float64, logger *zap.Logger) *Server {
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = request.DefaultRadiusKm
	}
	s := &Server{
		search:        search,
		health:        health,
		defaultRadius: defaultRadiusKm,
		logger:        logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEnvieRequired, http.StatusBadRequest, msgEnvieRequired),
		sentinelHandler(domain.ErrNoKeywords, http.StatusBadRequest, msgNoKeywords),
		parameterErrorHandler,
	}
	return s
}

// Mount registers the routes on r.
func (s *Server) Mount(r gochi.Router) {
	r.Get("/api/search/envie", s.SearchEnvie)
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, msgNotFound, "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed, "")
	})
}

// SearchEnvie handles GET /api/search/envie.
func (s *Server) SearchEnvie(w http.ResponseWriter, r *http.Request) {
	req, err := s.envieFromQuery(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	page, err := s.search.SearchEnvie(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	results := make([]envieResult, len(page.Results))
	for i := range page.Results {
		results[i] = envieResultFromScored(&page.Results[i])
	}

	writeJSON(w, http.StatusOK, envieResponse{
		Success: true,
		Results: results,
		Total:   len(results),
		Query:   queryEchoFromDiagnostics(req.Text(), &page.Diagnostics),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

func (s *Server) envieFromQuery(r *http.Request) (request.Envie, error) {
	q := r.URL.Query()

	radius := s.defaultRadius
	if v := strings.TrimSpace(q.Get("rayon")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
			return request.Envie{}, domain.NewParameterError("rayon", "must be a positive number")
		}
		if f > 0 {
			radius = f
		}
	}

	lat, err := optionalFloat(q.Get("lat"), "lat")
	if err != nil {
		return request.Envie{}, err
	}
	lng, err := optionalFloat(q.Get("lng"), "lng")
	if err != nil {
		return request.Envie{}, err
	}

	return request.New(q.Get("envie"), q.Get("ville"), radius, lat, lng) //nolint:wrapcheck // domain error
}

func optionalFloat(v, name string) (*float64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, domain.NewParameterError(name, "must be a number")
	}
	return &f, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{Error: message, Details: details})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, message string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, message, "")
		return true
	}
}

// parameterErrorHandler reports the offending parameter of ErrInvalidParameter.
func parameterErrorHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrInvalidParameter) {
		return false
	}
	details := ""
	var pe *domain.ParameterError
	if errors.As(err, &pe) {
		details = pe.Name + ": " + pe.Reason
	}
	writeError(w, http.StatusBadRequest, msgInvalidParameter, details)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Debug("Request rejected", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, msgSearchFailed, "internal error")
}

func envieResultFromScored(sr *result.Scored) envieResult {
	e := sr.Establishment()
	item := envieResult{
		ID:          e.ID,
		Name:        e.Name,
		Slug:        e.Slug,
		Description: e.Description,
		Address:     e.Address,
		City:        e.City,
		Activities:  nonNil(e.Activities),
		Tags:        nonNilTags(e.Tags),
		Score:       round(sr.FinalScore(), 2),
		IsOpen:      sr.IsOpen(),
		MatchedTags: nonNil(sr.MatchedTags()),
	}
	if e.Coordinates != nil {
		lat, lng := e.Coordinates.Lat, e.Coordinates.Lng
		item.Latitude, item.Longitude = &lat, &lng
	}
	if sr.HasDistance() {
		d := round(sr.DistanceKm(), 2)
		item.Distance = &d
	}
	if e.PrimaryImage != "" {
		img := e.PrimaryImage
		item.PrimaryImage = &img
	}
	return item
}

func queryEchoFromDiagnostics(text string, d *result.Diagnostics) queryEcho {
	return queryEcho{
		Envie: text,
		Keywords: keywordsEcho{
			Primary: nonNil(d.Keywords.Primary),
			Context: nonNil(d.Keywords.Context),
			All:     nonNil(d.Keywords.All),
		},
		Ville:        d.City,
		Rayon:        d.RadiusKm,
		Origin:       coordinatesEcho{Lat: d.Origin.Lat, Lng: d.Origin.Lng},
		OriginSource: string(d.OriginSource),
		Counts: countsEcho{
			Candidates:   d.Candidates,
			WithinRadius: d.WithinRadius,
			Relevant:     d.Relevant,
			Returned:     d.Returned,
		},
	}
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilTags(t []establishment.Tag) []establishment.Tag {
	if t == nil {
		return []establishment.Tag{}
	}
	return t
}
