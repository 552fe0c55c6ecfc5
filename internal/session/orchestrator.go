// Package session sequences method/dataset selection, parameter recommendation,
// remote job execution and result interpretation for one user.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"goanalytics/domain/analysis"
	"goanalytics/domain/core"
	"goanalytics/internal"
	"goanalytics/internal/interpret"
	"goanalytics/internal/recommend"
	"goanalytics/ports"
)

// Recommender computes default parameters for a method/dataset pair
type Recommender func(methodID string, ds analysis.DatasetDescriptor) analysis.ParameterSet

// Interpreter summarizes a successful result
type Interpreter func(result analysis.AnalysisResult) analysis.Interpretation

// Options configures an Orchestrator. JobClient is required.
type Options struct {
	Methods  map[string]analysis.MethodDescriptor
	Datasets []analysis.DatasetDescriptor

	JobClient ports.JobClient
	Sink      ports.NotificationSink

	Recommender Recommender
	Interpreter Interpreter
	Clock       core.Clock
	Logger      *internal.Logger

	// BaseContext is the parent of every cancellation token. Cancelling it
	// abandons any running job.
	BaseContext context.Context

	HistoryCapacity int
	Tags            []string
	SaveResults     bool
}

// Orchestrator owns the analysis session state machine.
//
// At most one session is Running at a time. Run and Cancel return immediately;
// the job client is awaited on a single goroutine per Running session and its
// settlement is applied only if its token still matches the live session.
type Orchestrator struct {
	mu sync.Mutex

	methods  map[string]analysis.MethodDescriptor
	datasets map[string]analysis.DatasetDescriptor

	current analysis.Session
	pending analysis.ParameterSet
	token   *cancellationToken
	last    *analysis.Session

	history *History

	client      ports.JobClient
	sink        ports.NotificationSink
	recommender Recommender
	interpreter Interpreter
	clock       core.Clock
	logger      *internal.Logger
	baseCtx     context.Context
	tags        []string
	save        bool

	inflight sync.WaitGroup
}

// NewOrchestrator creates an orchestrator with a fresh Idle session
func NewOrchestrator(opts Options) (*Orchestrator, error) {
	if opts.JobClient == nil {
		return nil, fmt.Errorf("job client cannot be nil")
	}

	o := &Orchestrator{
		history:     NewHistory(opts.HistoryCapacity),
		client:      opts.JobClient,
		sink:        opts.Sink,
		recommender: opts.Recommender,
		interpreter: opts.Interpreter,
		clock:       opts.Clock,
		logger:      opts.Logger,
		baseCtx:     opts.BaseContext,
		tags:        append([]string(nil), opts.Tags...),
		save:        opts.SaveResults,
		pending:     analysis.ParameterSet{},
	}
	if o.recommender == nil {
		o.recommender = recommend.Recommend
	}
	if o.interpreter == nil {
		o.interpreter = interpret.Interpret
	}
	if o.clock == nil {
		o.clock = core.SystemClock()
	}
	if o.logger == nil {
		o.logger = internal.DefaultLogger
	}
	o.logger = o.logger.With("Session")
	if o.baseCtx == nil {
		o.baseCtx = context.Background()
	}

	o.setCatalogLocked(opts.Methods, opts.Datasets)
	o.current = o.freshSessionLocked("", "")
	return o, nil
}

// UpdateCatalog replaces the method and dataset catalogs. A selection that is
// no longer in the catalog stays selected; its recommendations are not recomputed.
func (o *Orchestrator) UpdateCatalog(methods map[string]analysis.MethodDescriptor, datasets []analysis.DatasetDescriptor) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.setCatalogLocked(methods, datasets)
}

func (o *Orchestrator) setCatalogLocked(methods map[string]analysis.MethodDescriptor, datasets []analysis.DatasetDescriptor) {
	o.methods = make(map[string]analysis.MethodDescriptor, len(methods))
	for id, m := range methods {
		o.methods[id] = m
	}
	o.datasets = make(map[string]analysis.DatasetDescriptor, len(datasets))
	for _, ds := range datasets {
		o.datasets[ds.Name] = ds
	}
}

// SelectMethod chooses the analysis method and recomputes recommended parameters,
// discarding unsubmitted edits.
func (o *Orchestrator) SelectMethod(methodID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.current.State == analysis.SessionStateRunning {
		return core.ErrInvalidSelection
	}
	o.current.MethodID = methodID
	o.recomputeLocked()
	return nil
}

// SelectDataset chooses the target dataset and recomputes recommended parameters,
// discarding unsubmitted edits.
func (o *Orchestrator) SelectDataset(datasetName string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.current.State == analysis.SessionStateRunning {
		return core.ErrInvalidSelection
	}
	if datasetName != "" {
		if _, ok := o.datasets[datasetName]; !ok {
			return fmt.Errorf("%w: %s", core.ErrUnknownDataset, datasetName)
		}
	}
	o.current.DatasetName = datasetName
	o.recomputeLocked()
	return nil
}

// SetParameter merges one value into the pending parameter set. Values for
// parameters the method declares are conformed to their schema entry.
func (o *Orchestrator) SetParameter(name string, value analysis.ParamValue) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.current.State == analysis.SessionStateRunning {
		return core.ErrInvalidSelection
	}
	if name == "" {
		return core.NewInvalidParameterError(name, "name is required")
	}
	if spec, ok := o.specLocked(o.current.MethodID, name); ok {
		conformed, err := value.Conform(spec)
		if err != nil {
			return core.NewInvalidParameterError(name, err.Error())
		}
		value = conformed
	}
	o.pending[name] = value
	return nil
}

// Run freezes the pending parameters into a request and starts the job.
// It returns the Running session without waiting for the job.
func (o *Orchestrator) Run() (analysis.Session, error) {
	o.mu.Lock()

	if o.current.State == analysis.SessionStateRunning {
		o.mu.Unlock()
		return analysis.Session{}, core.ErrSessionRunning
	}
	if o.current.MethodID == "" || o.current.DatasetName == "" {
		o.mu.Unlock()
		return analysis.Session{}, core.ErrIncompleteSelection
	}

	params, err := o.validateLocked()
	if err != nil {
		o.mu.Unlock()
		return analysis.Session{}, err
	}

	req := analysis.NewAnalysisRequest(o.current.MethodID, o.current.DatasetName, params, o.tags, o.save)
	token := newCancellationToken(o.baseCtx)
	started := o.clock.Now()

	o.token = token
	o.current.State = analysis.SessionStateRunning
	o.current.StartedAt = &started
	o.current.Token = token.id
	o.current.Parameters = req.Parameters.Clone()

	snapshot := o.snapshotLocked()
	o.inflight.Add(1)
	o.mu.Unlock()

	o.logger.Info("Started %s on %s (session %s)", req.MethodID, req.DatasetName, snapshot.ID)

	go o.execute(token, req)
	return snapshot, nil
}

func (o *Orchestrator) execute(token *cancellationToken, req analysis.AnalysisRequest) {
	defer o.inflight.Done()

	result, err := o.client.Submit(token.ctx, req)
	o.settle(token.id, result, err)
}

// Cancel abandons the Running session. It reports whether a session was cancelled;
// calling it while nothing is running is a no-op.
func (o *Orchestrator) Cancel() bool {
	o.mu.Lock()

	if o.current.State != analysis.SessionStateRunning {
		o.mu.Unlock()
		return false
	}

	o.current.ErrorMessage = analysis.CancelledMessage
	n := o.finishLocked(analysis.SessionStateCancelled)
	o.mu.Unlock()

	o.logger.Info("Cancelled session %s after %dms", n.SessionID, n.DurationMillis)
	o.notify(n)
	return true
}

// settle applies a job outcome if tokenID still identifies the Running session.
// Anything else is a stale settlement (already cancelled or superseded) and is dropped.
func (o *Orchestrator) settle(tokenID core.TokenID, result *analysis.AnalysisResult, err error) {
	o.mu.Lock()

	if o.current.State != analysis.SessionStateRunning || o.current.Token != tokenID {
		o.mu.Unlock()
		o.logger.Debug("Discarded stale settlement for token %s", tokenID)
		return
	}

	var n analysis.Notification
	switch {
	case err == nil && result != nil:
		res := *result
		interp := o.interpreter(res)
		o.current.Result = &res
		o.current.Interpretation = &interp
		n = o.finishLocked(analysis.SessionStateSucceeded)
	case core.IsCancelled(err) || errors.Is(err, context.Canceled):
		// Cancelled from outside Cancel(), e.g. the base context shutting down
		o.current.ErrorMessage = analysis.CancelledMessage
		n = o.finishLocked(analysis.SessionStateCancelled)
	default:
		o.current.ErrorMessage = failureMessage(err)
		n = o.finishLocked(analysis.SessionStateFailed)
	}
	o.mu.Unlock()

	switch n.Kind {
	case analysis.EventCompleted:
		o.logger.Info("Session %s completed in %dms", n.SessionID, n.DurationMillis)
	case analysis.EventFailed:
		o.logger.Warn("Session %s failed after %dms: %s", n.SessionID, n.DurationMillis, n.Message)
	default:
		o.logger.Info("Session %s cancelled after %dms", n.SessionID, n.DurationMillis)
	}
	o.notify(n)
}

// finishLocked performs the single terminal transition out of Running: it signals
// the token, stamps settledAt, archives the session into history and replaces it
// with a fresh Idle session that keeps the selection and pending edits.
func (o *Orchestrator) finishLocked(state analysis.SessionState) analysis.Notification {
	settled := o.clock.Now()
	o.current.State = state
	o.current.SettledAt = &settled

	started := settled
	if o.current.StartedAt != nil {
		started = *o.current.StartedAt
	}
	duration := core.DurationMillis(started, settled)
	o.current.ElapsedMillis = duration

	archived := o.current
	o.last = &archived

	displayName := o.displayNameLocked(archived.MethodID)
	o.history.Append(analysis.HistoryEntry{
		MethodDisplayName: displayName,
		DatasetName:       archived.DatasetName,
		StartedAt:         started,
		SettledAt:         settled,
		DurationMillis:    duration,
		Outcome:           outcomeFor(state),
	})

	// Signalling after a settled job only releases the token's context
	o.token.signal()
	o.token = nil
	o.current = o.freshSessionLocked(archived.MethodID, archived.DatasetName)

	return analysis.Notification{
		Kind:              eventFor(state),
		SessionID:         archived.ID,
		MethodDisplayName: displayName,
		DurationMillis:    duration,
		Message:           archived.ErrorMessage,
	}
}

// Snapshot returns a copy of the live session
func (o *Orchestrator) Snapshot() analysis.Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// LastSettled returns the most recently settled session, if any
func (o *Orchestrator) LastSettled() (analysis.Session, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.last == nil {
		return analysis.Session{}, false
	}
	s := *o.last
	s.Parameters = s.Parameters.Clone()
	return s, true
}

// History returns settled sessions, oldest first
func (o *Orchestrator) History() []analysis.HistoryEntry {
	return o.history.Entries()
}

// ClearHistory empties the history log; the last settled session stays readable
func (o *Orchestrator) ClearHistory() {
	o.history.Reset()
}

// Methods returns the method catalog the orchestrator validates against
func (o *Orchestrator) Methods() map[string]analysis.MethodDescriptor {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make(map[string]analysis.MethodDescriptor, len(o.methods))
	for id, m := range o.methods {
		out[id] = m
	}
	return out
}

// MethodDisplayName returns the catalog display name for methodID, or the id itself
func (o *Orchestrator) MethodDisplayName(methodID string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.displayNameLocked(methodID)
}

// Wait blocks until every job goroutine has returned
func (o *Orchestrator) Wait() {
	o.inflight.Wait()
}

func (o *Orchestrator) snapshotLocked() analysis.Session {
	s := o.current
	if s.State == analysis.SessionStateRunning {
		s.Parameters = s.Parameters.Clone()
		if s.StartedAt != nil {
			s.ElapsedMillis = core.DurationMillis(*s.StartedAt, o.clock.Now())
		}
	} else {
		s.Parameters = o.pending.Clone()
	}
	return s
}

func (o *Orchestrator) freshSessionLocked(methodID, datasetName string) analysis.Session {
	return analysis.Session{
		ID:          core.NewSessionID(),
		MethodID:    methodID,
		DatasetName: datasetName,
		State:       analysis.SessionStateIdle,
	}
}

func (o *Orchestrator) recomputeLocked() {
	if o.current.MethodID == "" || o.current.DatasetName == "" {
		o.pending = analysis.ParameterSet{}
		return
	}
	ds := o.datasets[o.current.DatasetName]
	params := o.recommender(o.current.MethodID, ds)
	if params == nil {
		params = analysis.ParameterSet{}
	}
	o.pending = params.Clone()
}

// validateLocked conforms pending values to the method schema and returns the
// set to freeze. Methods absent from the catalog are submitted unvalidated.
func (o *Orchestrator) validateLocked() (analysis.ParameterSet, error) {
	out := o.pending.Clone()
	method, ok := o.methods[o.current.MethodID]
	if !ok {
		return out, nil
	}
	for _, name := range out.Names() {
		spec, declared := method.ParameterSchema[name]
		if !declared {
			continue
		}
		v, err := out[name].Conform(spec)
		if err != nil {
			return nil, core.NewInvalidParameterError(name, err.Error())
		}
		out[name] = v
	}
	return out, nil
}

func (o *Orchestrator) specLocked(methodID, name string) (analysis.ParamSpec, bool) {
	method, ok := o.methods[methodID]
	if !ok {
		return analysis.ParamSpec{}, false
	}
	spec, ok := method.ParameterSchema[name]
	return spec, ok
}

func (o *Orchestrator) displayNameLocked(methodID string) string {
	if m, ok := o.methods[methodID]; ok && m.DisplayName != "" {
		return m.DisplayName
	}
	return methodID
}

func (o *Orchestrator) notify(n analysis.Notification) {
	if o.sink != nil {
		o.sink.Notify(n)
	}
}

func failureMessage(err error) string {
	var jobErr *analysis.JobError
	switch {
	case err == nil:
		return "analysis service returned no result"
	case errors.As(err, &jobErr):
		return jobErr.Message
	case errors.Is(err, context.DeadlineExceeded):
		return "analysis timed out"
	default:
		return err.Error()
	}
}

func outcomeFor(state analysis.SessionState) analysis.Outcome {
	switch state {
	case analysis.SessionStateSucceeded:
		return analysis.OutcomeSucceeded
	case analysis.SessionStateCancelled:
		return analysis.OutcomeCancelled
	default:
		return analysis.OutcomeFailed
	}
}

func eventFor(state analysis.SessionState) analysis.EventKind {
	switch state {
	case analysis.SessionStateSucceeded:
		return analysis.EventCompleted
	case analysis.SessionStateCancelled:
		return analysis.EventCancelled
	default:
		return analysis.EventFailed
	}
}
