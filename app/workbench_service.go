package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"goanalytics/domain/analysis"
	"goanalytics/internal"
	"goanalytics/internal/interpret"
	"goanalytics/internal/session"
	"goanalytics/ports"
)

// ReportFormat selects how the last result is rendered
type ReportFormat string

const (
	ReportMarkdown ReportFormat = "markdown"
	ReportHTML     ReportFormat = "html"
)

// ErrNoResult is returned when no session has succeeded yet
var ErrNoResult = errors.New("no settled analysis result")

// WorkbenchConfig wires a WorkbenchService
type WorkbenchConfig struct {
	Methods   ports.MethodCatalog
	Datasets  ports.DatasetCatalog
	JobClient ports.JobClient
	Sink      ports.NotificationSink
	Logger    *internal.Logger

	// Session options; catalogs, job client and sink above take precedence
	Session session.Options
}

// WorkbenchService owns the catalogs and the single session orchestrator
type WorkbenchService struct {
	methods  ports.MethodCatalog
	datasets ports.DatasetCatalog
	session  *session.Orchestrator
	log      *internal.Logger

	mu          sync.RWMutex
	methodList  []analysis.MethodDescriptor
	datasetList []analysis.DatasetDescriptor
}

// NewWorkbenchService loads both catalogs and creates the orchestrator
func NewWorkbenchService(ctx context.Context, cfg WorkbenchConfig) (*WorkbenchService, error) {
	if cfg.Methods == nil || cfg.Datasets == nil {
		return nil, fmt.Errorf("method and dataset catalogs are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}

	s := &WorkbenchService{
		methods:  cfg.Methods,
		datasets: cfg.Datasets,
		log:      logger.With("Workbench"),
	}

	methods, datasets, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	opts := cfg.Session
	opts.Methods = methods
	opts.Datasets = datasets
	opts.JobClient = cfg.JobClient
	opts.Sink = cfg.Sink
	if opts.Logger == nil {
		opts.Logger = logger
	}
	orch, err := session.NewOrchestrator(opts)
	if err != nil {
		return nil, err
	}
	s.session = orch
	s.store(methods, datasets)
	return s, nil
}

// load queries both catalogs concurrently
func (s *WorkbenchService) load(ctx context.Context) (map[string]analysis.MethodDescriptor, []analysis.DatasetDescriptor, error) {
	var (
		methods  map[string]analysis.MethodDescriptor
		datasets []analysis.DatasetDescriptor
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		methods, err = s.methods.ListMethods(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		datasets, err = s.datasets.ListDatasets(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	s.log.Info("catalog loaded: %d methods, %d datasets", len(methods), len(datasets))
	return methods, datasets, nil
}

func (s *WorkbenchService) store(methods map[string]analysis.MethodDescriptor, datasets []analysis.DatasetDescriptor) {
	list := make([]analysis.MethodDescriptor, 0, len(methods))
	for _, m := range methods {
		list = append(list, m)
	}
	slices.SortFunc(list, func(a, b analysis.MethodDescriptor) int {
		if c := strings.Compare(a.DisplayName, b.DisplayName); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.methodList = list
	s.datasetList = slices.Clone(datasets)
}

// Refresh re-queries both catalogs and hands them to the orchestrator.
// On error the previous catalogs stay in place.
func (s *WorkbenchService) Refresh(ctx context.Context) error {
	methods, datasets, err := s.load(ctx)
	if err != nil {
		s.log.Warn("catalog refresh failed: %v", err)
		return err
	}
	s.session.UpdateCatalog(methods, datasets)
	s.store(methods, datasets)
	return nil
}

// Methods returns methods ordered by display name
func (s *WorkbenchService) Methods() []analysis.MethodDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.methodList)
}

// Datasets returns datasets in catalog order
func (s *WorkbenchService) Datasets() []analysis.DatasetDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.datasetList)
}

// Session returns the orchestrator
func (s *WorkbenchService) Session() *session.Orchestrator {
	return s.session
}

// Report renders the last settled session. Only succeeded sessions have a report.
func (s *WorkbenchService) Report(format ReportFormat) (string, error) {
	last, ok := s.session.LastSettled()
	if !ok || last.State != analysis.SessionStateSucceeded || last.Result == nil || last.Interpretation == nil {
		return "", ErrNoResult
	}

	name := s.session.MethodDisplayName(last.MethodID)
	switch format {
	case ReportHTML:
		return interpret.RenderHTML(name, *last.Result, *last.Interpretation), nil
	case ReportMarkdown, "":
		return interpret.RenderMarkdown(name, *last.Result, *last.Interpretation), nil
	default:
		return "", fmt.Errorf("unknown report format %q", format)
	}
}

// Shutdown cancels any running job and waits for its goroutine
func (s *WorkbenchService) Shutdown() {
	if s.session.Cancel() {
		s.log.Info("cancelled running analysis on shutdown")
	}
	s.session.Wait()
}
