package search

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/envie-local/envie/internal/domain"
	"github.com/envie-local/envie/internal/domain/establishment"
	"github.com/envie-local/envie/internal/domain/geo"
	"github.com/envie-local/envie/internal/domain/search/keyword"
	"github.com/envie-local/envie/internal/domain/search/request"
	"github.com/envie-local/envie/internal/domain/search/result"
	logpkg "github.com/envie-local/envie/internal/logger"
	"github.com/envie-local/envie/internal/metrics"
)

// Defaults for Config fields left at zero.
const (
	DefaultGeocodeTimeout    = 3 * time.Second
	DefaultParallelThreshold = 512
)

// DefaultOrigin is Dijon city centre.
var DefaultOrigin = geo.Coordinates{Lat: 47.3220, Lng: 5.0415}

// Config tunes the search pipeline.
type Config struct {
	// DefaultOrigin is used when neither coordinates nor a resolvable city are given.
	DefaultOrigin geo.Coordinates
	ResultLimit   int
	// GeocodeTimeout bounds the single geocoding call of a request.
	GeocodeTimeout time.Duration
	// ParallelThreshold is the candidate count from which scoring fans out.
	ParallelThreshold int
	Weights           Weights
	// Logger is used when the request context carries no logger.
	Logger *zap.Logger
}

// Service runs the envie pipeline: extract, locate, filter, score, rank.
type Service struct {
	repo      Repository
	geocoder  Geocoder
	extractor KeywordExtractor
	scorer    *Scorer
	clock     Clock
	cfg       Config
}

// New creates a search service. geocoder may be nil (cities are then ignored).
func New(repo Repository, geocoder Geocoder, extractor KeywordExtractor, clock Clock, cfg Config) *Service {
	if cfg.DefaultOrigin == (geo.Coordinates{}) {
		cfg.DefaultOrigin = DefaultOrigin
	}
	if cfg.ResultLimit <= 0 || cfg.ResultLimit > DefaultResultLimit {
		cfg.ResultLimit = DefaultResultLimit
	}
	if cfg.GeocodeTimeout <= 0 {
		cfg.GeocodeTimeout = DefaultGeocodeTimeout
	}
	if cfg.ParallelThreshold <= 0 {
		cfg.ParallelThreshold = DefaultParallelThreshold
	}
	if cfg.Weights == (Weights{}) {
		cfg.Weights = DefaultWeights()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Service{
		repo:      repo,
		geocoder:  geocoder,
		extractor: extractor,
		scorer:    NewScorer(cfg.Weights),
		clock:     clock,
		cfg:       cfg,
	}
}

// SearchEnvie ranks establishments matching the intent of req.
// Returns domain.ErrNoKeywords when the text holds no significant keyword.
func (s *Service) SearchEnvie(ctx context.Context, req *request.Envie) (result.Page, error) {
	ks := s.extractor.Extract(req.Text())
	if ks.IsEmpty() {
		metrics.SearchRequestsTotal.WithLabelValues("no_keywords").Inc()
		return result.Page{}, domain.ErrNoKeywords
	}

	origin, source := s.resolveOrigin(ctx, req)
	bound := geo.BoundAround(origin, req.RadiusKm())

	candidates, err := s.repo.ListCandidates(ctx, &bound)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return result.Page{}, fmt.Errorf("list candidates: %w", err)
	}

	within := make([]*establishment.Establishment, 0, len(candidates))
	for i := range candidates {
		e := &candidates[i]
		if e.IsCandidate() && geo.IsWithinRadius(&origin, e.Coordinates, req.RadiusKm()) {
			within = append(within, e)
		}
	}

	scored, err := s.scoreAll(ctx, within, ks, &origin)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return result.Page{}, fmt.Errorf("score candidates: %w", err)
	}

	relevant := 0
	for i := range scored {
		if scored[i].ThematicScore() > 0 {
			relevant++
		}
	}
	ranked := Rank(scored, s.cfg.ResultLimit)

	metrics.SearchStageSize.WithLabelValues("candidates").Observe(float64(len(candidates)))
	metrics.SearchStageSize.WithLabelValues("within_radius").Observe(float64(len(within)))
	metrics.SearchStageSize.WithLabelValues("relevant").Observe(float64(relevant))
	metrics.SearchRequestsTotal.WithLabelValues("ok").Inc()

	return result.Page{
		Results: ranked,
		Diagnostics: result.Diagnostics{
			Keywords:     ks,
			Origin:       origin,
			OriginSource: source,
			City:         req.City(),
			RadiusKm:     req.RadiusKm(),
			Candidates:   len(candidates),
			WithinRadius: len(within),
			Relevant:     relevant,
			Returned:     len(ranked),
		},
	}, nil
}

// resolveOrigin picks explicit coordinates, then the geocoded city, then the
// default origin. Geocoding failures are logged and never surface.
func (s *Service) resolveOrigin(ctx context.Context, req *request.Envie) (geo.Coordinates, result.OriginSource) {
	if o := req.Origin(); o != nil {
		return *o, result.OriginExplicit
	}

	if req.City() != "" && s.geocoder != nil {
		gctx, cancel := context.WithTimeout(ctx, s.cfg.GeocodeTimeout)
		defer cancel()

		c, err := s.geocoder.Geocode(gctx, req.City())
		if err == nil {
			return c, result.OriginGeocoded
		}
		level := zap.WarnLevel
		if errors.Is(err, domain.ErrGeocodeNotFound) {
			level = zap.InfoLevel
		}
		logpkg.FromContextOr(ctx, s.cfg.Logger).Check(level, "Geocoding failed, using default origin").Write(
			zap.String("city", req.City()),
			zap.Error(err),
		)
	}

	return s.cfg.DefaultOrigin, result.OriginDefault
}

// scoreAll scores every establishment. Large sets are split into chunks scored
// concurrently; each chunk writes to its own slice range.
func (s *Service) scoreAll(
	ctx context.Context, ests []*establishment.Establishment, ks keyword.KeywordSet, origin *geo.Coordinates,
) ([]result.Scored, error) {
	now := s.clock.Now()
	kws := classify(ks)
	out := make([]result.Scored, len(ests))

	if len(ests) < s.cfg.ParallelThreshold {
		for i, e := range ests {
			out[i] = s.scorer.score(e, kws, origin, now)
		}
		return out, nil
	}

	workers := runtime.GOMAXPROCS(0)
	chunk := (len(ests) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(ests); start += chunk {
		end := min(start+chunk, len(ests))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				out[i] = s.scorer.score(ests[i], kws, origin, now)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // context error, wrapped by caller
	}
	return out, nil
}
