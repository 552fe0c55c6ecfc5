package main

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"gonum.org/v1/gonum/stat/distuv"

	"goanalytics/domain/analysis"
	"goanalytics/internal"
	"goanalytics/internal/catalog"
)

// collection is one simulated dataset
type collection struct {
	Name          string
	DocumentCount int
	NumericFields []string
	SampleFields  []string
}

// maxClusters matches the upper bound of the recommended n_clusters
const maxClusters = 10

func defaultCollections() []collection {
	return []collection{
		{"sales", 48000, []string{"amount", "quantity", "discount"}, []string{"date", "amount", "quantity", "discount", "region"}},
		{"web_traffic", 250000, []string{"visits", "bounce_rate"}, []string{"date", "visits", "bounce_rate", "page"}},
		{"sensors", 1200, []string{"temperature", "humidity"}, []string{"timestamp", "temperature", "humidity", "device"}},
		{"support_tickets", 300, []string{}, []string{"opened", "priority", "channel"}},
	}
}

// SimulatorConfig holds simulator settings
type SimulatorConfig struct {
	Latency  time.Duration
	FailRate float64
	Token    string
	Seed     uint64
}

// Simulator stands in for the remote analysis service
type Simulator struct {
	router      *chi.Mux
	collections []collection
	latency     time.Duration
	failRate    float64
	token       string
	log         *internal.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator creates a simulator and registers its routes
func NewSimulator(cfg SimulatorConfig, logger *internal.Logger) *Simulator {
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	s := &Simulator{
		router:      chi.NewRouter(),
		collections: defaultCollections(),
		latency:     cfg.Latency,
		failRate:    cfg.FailRate,
		token:       cfg.Token,
		log:         logger.With("JobSim"),
		rng:         rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Simulator) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.authenticate)
}

func (s *Simulator) setupRoutes() {
	s.router.Route("/analytics", func(r chi.Router) {
		r.Get("/methods", s.handleMethods)
		r.Get("/collections", s.handleCollections)
		r.Get("/collections/{name}/stats", s.handleStats)
		r.Post("/analyze", s.handleAnalyze)
	})
}

// ServeHTTP implements http.Handler
func (s *Simulator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Simulator) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "invalid or missing bearer token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Simulator) handleMethods(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{}
	for id, m := range catalog.BuiltinMethods() {
		params := map[string]any{}
		for name, spec := range m.ParameterSchema {
			p := map[string]any{
				"type":        wireType(spec.Kind),
				"default":     spec.Default,
				"description": spec.Description,
			}
			if len(spec.Options) > 0 {
				p["options"] = spec.Options
			}
			params[name] = p
		}
		out[id] = map[string]any{"name": m.DisplayName, "description": m.Description, "parameters": params}
	}
	writeJSON(w, http.StatusOK, out)
}

func wireType(kind analysis.ParamKind) string {
	if kind == analysis.KindInteger {
		return "int"
	}
	return "str"
}

func (s *Simulator) handleCollections(w http.ResponseWriter, r *http.Request) {
	out := make([]map[string]any, 0, len(s.collections))
	for _, c := range s.collections {
		out = append(out, map[string]any{"name": c.Name, "document_count": c.DocumentCount})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Simulator) find(name string) (collection, bool) {
	for _, c := range s.collections {
		if c.Name == name {
			return c, true
		}
	}
	return collection{}, false
}

func (s *Simulator) handleStats(w http.ResponseWriter, r *http.Request) {
	c, ok := s.find(chi.URLParam(r, "name"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "collection not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document_count": c.DocumentCount,
		"numeric_fields": c.NumericFields,
		"sample_fields":  c.SampleFields,
	})
}

func (s *Simulator) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analysis.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request body"})
		return
	}

	c, ok := s.find(req.DatasetName)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": fmt.Sprintf("collection %s not found", req.DatasetName)})
		return
	}
	if _, ok := catalog.BuiltinMethods()[req.MethodID]; !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": fmt.Sprintf("unknown analysis type %s", req.MethodID)})
		return
	}

	// Simulated work; a disconnecting client abandons it
	select {
	case <-time.After(s.latency):
	case <-r.Context().Done():
		s.log.Info("%s on %s abandoned by client", req.MethodID, req.DatasetName)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failRate > 0 && s.rng.Float64() < s.failRate {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "analysis worker crashed"})
		return
	}

	records := min(c.DocumentCount, intParam(req.Parameters, "sample_size", c.DocumentCount))
	writeJSON(w, http.StatusOK, map[string]any{
		"analysis_type":   req.MethodID,
		"collection_name": req.DatasetName,
		"record_count":    records,
		"results":         s.payload(req, c, records),
		"visualizations":  []any{},
		"created_at":      time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func intParam(p analysis.ParameterSet, name string, fallback int) int {
	if v, ok := p[name]; ok && v.Kind == analysis.KindInteger {
		return v.Int
	}
	return fallback
}

func strParam(p analysis.ParameterSet, name, fallback string) string {
	if v, ok := p[name]; ok && v.Kind != analysis.KindInteger && v.Str != "" {
		return v.Str
	}
	return fallback
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// payload fabricates a plausible method-specific result; s.mu must be held
func (s *Simulator) payload(req analysis.AnalysisRequest, c collection, records int) map[string]any {
	switch req.MethodID {
	case analysis.MethodClustering:
		k := min(max(intParam(req.Parameters, "n_clusters", 3), 1), maxClusters, max(records, 1))
		sizes := make([]int, k)
		left := records
		for i := range sizes {
			if i == k-1 {
				sizes[i] = left
				break
			}
			share := distuv.Uniform{Min: 0.5, Max: 1.5, Src: s.rng}.Rand() / float64(k-i)
			sizes[i] = min(left, int(float64(left)*share))
			left -= sizes[i]
		}
		silhouette := distuv.Beta{Alpha: 6, Beta: 4, Src: s.rng}.Rand()
		return map[string]any{
			"n_clusters":       k,
			"silhouette_score": round(silhouette, 2),
			"cluster_sizes":    sizes,
			"insights":         []string{fmt.Sprintf("The largest group holds %d of %d records", slices.Max(sizes), records)},
			"recommendations":  []string{"Profile the largest group before targeting smaller ones"},
		}

	case analysis.MethodPrediction:
		target := strParam(req.Parameters, "target_col", "value")
		accuracy := math.Min(99, math.Max(50, distuv.Normal{Mu: 86, Sigma: 5, Src: s.rng}.Rand()))
		days := intParam(req.Parameters, "days_ahead", 30)
		return map[string]any{
			"target":              target,
			"days_ahead":          days,
			"accuracy_percentage": round(accuracy, 1),
			"insights":            []string{fmt.Sprintf("%s is forecast %d days ahead", target, days)},
		}

	case analysis.MethodTimeseries:
		slope := distuv.Normal{Mu: 0, Sigma: 1, Src: s.rng}.Rand()
		direction := "stable"
		switch {
		case slope > 0.5:
			direction = "increasing"
		case slope < -0.5:
			direction = "decreasing"
		}
		return map[string]any{
			"period_days":     max(1, records/100),
			"trend_direction": direction,
			"value_col":       strParam(req.Parameters, "value_col", "value"),
			"recommendations": []string{"Compare the trend against the same period last year"},
		}

	case analysis.MethodAnomaly:
		flagged := distuv.Poisson{Lambda: math.Max(1, float64(records)*0.02), Src: s.rng}.Rand()
		rate := 0.0
		if records > 0 {
			rate = round(100*flagged/float64(records), 2)
		}
		return map[string]any{
			"method":        strParam(req.Parameters, "method", "isolation"),
			"anomaly_count": int(flagged),
			"anomaly_rate":  rate,
			"insights":      []string{fmt.Sprintf("%d records deviate from the bulk of the data", int(flagged))},
		}

	default:
		fields := map[string]any{}
		for _, f := range c.NumericFields {
			mean := distuv.Uniform{Min: 10, Max: 1000, Src: s.rng}.Rand()
			fields[f] = map[string]float64{"mean": round(mean, 2), "std": round(mean*0.2, 2)}
		}
		return map[string]any{"fields": fields}
	}
}
