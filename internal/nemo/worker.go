package nemo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/deepanalytics/reasoning-engines/internal/config"
	"github.com/deepanalytics/reasoning-engines/internal/engineerr"
	"github.com/deepanalytics/reasoning-engines/internal/nemo/reasoner"
)

const noKnowledgeBase = "No knowledge base loaded"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// workerState is owned exclusively by the worker's run loop goroutine; no
// other goroutine ever touches it, so it needs no lock of its own.
type workerState struct {
	program     string
	annotations map[string]string
	history     []string
}

func newWorkerState() *workerState {
	return &workerState{annotations: map[string]string{}}
}

func (s *workerState) recordAccepted(statement string, limit int) {
	s.history = append(s.history, statement)
	if over := len(s.history) - limit; over > 0 {
		s.history = s.history[over:]
	}
}

// Worker is the single long-running actor owning one session's Datalog
// program text and predicate annotations. Every exported
// method other than Stopped and Shutdown submits a command over an
// internal channel and blocks on that command's one-shot reply; the run loop guarantees per-session FIFO
// ordering and that two commands never execute concurrently.
type Worker struct {
	sessionID string
	commands  chan *command
	stopped   chan struct{}
	backend   reasoner.Backend
	log       *slog.Logger

	historyLimit int
}

// NewWorker starts a worker actor for sessionID and returns its handle.
// The caller owns the handle's lifecycle and should call Shutdown when
// done with it.
func NewWorker(sessionID string, backend reasoner.Backend, log *slog.Logger) *Worker {
	if log == nil {
		log = discardLogger()
	}
	w := &Worker{
		sessionID:    sessionID,
		commands:     make(chan *command, config.WorkerQueueSize()),
		stopped:      make(chan struct{}),
		backend:      backend,
		log:          log.With("session_id", sessionID),
		historyLimit: config.WorkerHistoryLimit,
	}
	go w.run()
	return w
}

// Stopped closes once the worker's run loop has exited.
func (w *Worker) Stopped() <-chan struct{} { return w.stopped }

func (w *Worker) run() {
	defer close(w.stopped)
	state := newWorkerState()
	for cmd := range w.commands {
		if cmd.kind == cmdShutdown {
			cmd.reply <- commandResult{}
			return
		}
		w.dispatch(state, cmd)
	}
}

func (w *Worker) dispatch(state *workerState, cmd *command) {
	switch cmd.kind {
	case cmdLoadFact, cmdLoadRule:
		val, err := w.handleLoadStatement(state, cmd.text)
		cmd.reply <- commandResult{val: val, err: err}
	case cmdLoadBulk:
		val, err := w.handleLoadBulk(state, cmd.text, cmd.atomic)
		cmd.reply <- commandResult{val: val, err: err}
	case cmdQuery:
		val, err := w.handleQuery(state, cmd.text, cmd.timeout)
		cmd.reply <- commandResult{val: val, err: err}
	case cmdMaterialize:
		val, err := w.handleMaterialize(state, cmd.timeout)
		cmd.reply <- commandResult{val: val, err: err}
	case cmdGetTraceJSON:
		cmd.reply <- commandResult{val: w.handleTraceJSON(state)}
	case cmdReset:
		state.program = ""
		state.annotations = map[string]string{}
		state.history = nil
		cmd.reply <- commandResult{val: struct{}{}}
	case cmdListPremises:
		cmd.reply <- commandResult{val: w.handleListPremises(state)}
	case cmdValidateRule:
		val, err := validateRule(cmd.text)
		cmd.reply <- commandResult{val: val, err: err}
	case cmdAddAnnotation:
		state.annotations[cmd.predicate] = cmd.annotation
		cmd.reply <- commandResult{val: struct{}{}}
	case cmdListAnnotations:
		out := make(map[string]string, len(state.annotations))
		for k, v := range state.annotations {
			out[k] = v
		}
		cmd.reply <- commandResult{val: out}
	case cmdExplainInference:
		cmd.reply <- commandResult{val: w.handleExplainInference(cmd.traceJSON, cmd.short)}
	default:
		cmd.reply <- commandResult{err: engineerr.Internal("unrecognized worker command")}
	}
}

// handleLoadStatement implements the common fact/rule sanitation and
// transactional commit path.
func (w *Worker) handleLoadStatement(state *workerState, raw string) (LoadResult, error) {
	stripped := stripComments(raw)
	s := strings.TrimSpace(stripped)
	if err := checkDatalogSyntax(s); err != nil {
		return LoadResult{}, err
	}
	if err := checkVariableSyntax(s); err != nil {
		return LoadResult{}, err
	}

	candidate := state.program
	if candidate != "" {
		candidate += "\n"
	}
	candidate += s

	if _, err := w.backend.Load(candidate); err != nil {
		return LoadResult{}, engineerr.ReasonerError(err)
	}

	state.program = candidate
	state.recordAccepted(s, w.historyLimit)
	return LoadResult{Accepted: true}, nil
}

// handleLoadBulk implements the bulk-load path. The loader only accepts
// whole programs, so atomic and non-atomic share the same all-or-nothing
// write path and differ only in how rolled_back is reported.
func (w *Worker) handleLoadBulk(state *workerState, raw string, atomic bool) (BulkLoadResult, error) {
	stripped := stripComments(raw)
	var statements []string
	for _, line := range strings.Split(stripped, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		statements = append(statements, line)
	}

	if err := checkVariableSyntax(stripped); err != nil {
		return BulkLoadResult{RolledBack: atomic, Errors: []string{err.Error()}}, nil
	}

	candidate := state.program
	for _, s := range statements {
		if err := checkDatalogSyntax(s); err != nil {
			return BulkLoadResult{RolledBack: atomic, Errors: []string{err.Error()}}, nil
		}
		if candidate != "" {
			candidate += "\n"
		}
		candidate += s
	}

	if _, err := w.backend.Load(candidate); err != nil {
		return BulkLoadResult{RolledBack: atomic, Errors: []string{err.Error()}}, nil
	}

	state.program = candidate
	for _, s := range statements {
		state.recordAccepted(s, w.historyLimit)
	}
	return BulkLoadResult{AddedCount: len(statements), RolledBack: false}, nil
}

type queryCompute struct {
	rows []reasoner.Row
	err  error
}

// handleQuery implements the ten-step query algorithm. The
// actual reasoner work runs in its own goroutine so the worker can
// abandon it at the timeout without wedging the run loop.
func (w *Worker) handleQuery(state *workerState, raw string, timeout time.Duration) (QueryResult, error) {
	if err := checkQuerySyntax(raw); err != nil {
		return QueryResult{}, err
	}
	if err := checkVariableSyntax(raw); err != nil {
		return QueryResult{}, err
	}
	if strings.TrimSpace(state.program) == "" {
		return QueryResult{Status: StatusInconclusive, Explanation: noKnowledgeBase}, nil
	}
	if timeout <= 0 {
		timeout = config.QueryTimeout()
	}

	s := strings.TrimSpace(raw)
	body := strings.TrimSuffix(strings.TrimPrefix(s, "?-"), ".")
	body = strings.TrimSpace(body)
	vars := extractVariables(body)
	predicate := extractPredicateName(body)

	augmented := state.program
	if augmented != "" {
		augmented += "\n"
	}
	augmented += fmt.Sprintf("@export %s.", predicate)

	resultCh := make(chan queryCompute, 1)
	go func() {
		prog, err := w.backend.Load(augmented)
		if err != nil {
			resultCh <- queryCompute{err: err}
			return
		}
		if err := w.backend.Reason(prog); err != nil {
			resultCh <- queryCompute{err: err}
			return
		}
		rows, err := w.backend.PredicateRows(prog, predicate)
		resultCh <- queryCompute{rows: rows, err: err}
	}()

	select {
	case r := <-resultCh:
		if r.err != nil {
			return QueryResult{Status: StatusInconclusive, Explanation: r.err.Error()}, nil
		}
		return buildQueryResult(body, vars, r.rows), nil
	case <-time.After(timeout):
		return QueryResult{
			Status:      StatusInconclusive,
			Explanation: fmt.Sprintf("query exceeded %dms budget", timeout.Milliseconds()),
		}, nil
	}
}

func buildQueryResult(body string, vars []string, rows []reasoner.Row) QueryResult {
	if len(vars) == 0 {
		arg := strings.TrimSpace(body)
		if idx := strings.IndexByte(arg, '('); idx >= 0 {
			arg = strings.TrimSuffix(arg[idx+1:], ")")
		}
		proven := false
		for _, row := range rows {
			if strings.Contains(row.String(), arg) {
				proven = true
				break
			}
		}
		status := StatusInconclusive
		if proven {
			status = StatusTrue
		}
		return QueryResult{Status: status, Proven: proven}
	}

	const maxBindingRows = 10
	limit := len(rows)
	if limit > maxBindingRows {
		limit = maxBindingRows
	}
	bindings := make([]map[string]string, 0, limit)
	for _, row := range rows[:limit] {
		b := make(map[string]string, len(vars))
		for j, v := range vars {
			if j < len(row.Values) {
				b[v] = row.Values[j]
			}
		}
		bindings = append(bindings, b)
	}
	status := StatusInconclusive
	if len(bindings) > 0 {
		status = StatusTrue
	}
	return QueryResult{Status: status, Proven: len(bindings) > 0, Bindings: bindings}
}

// handleMaterialize drives the reasoner to fixpoint over the current
// program under a timeout budget.
func (w *Worker) handleMaterialize(state *workerState, timeout time.Duration) (MaterializeResult, error) {
	if strings.TrimSpace(state.program) == "" {
		return MaterializeResult{}, engineerr.OperationNotAllowed("materialize requires a non-empty program")
	}
	if timeout <= 0 {
		timeout = config.MaterializeTimeout()
	}

	type computeResult struct {
		err error
	}
	program := state.program
	resultCh := make(chan computeResult, 1)
	start := time.Now()
	go func() {
		prog, err := w.backend.Load(program)
		if err != nil {
			resultCh <- computeResult{err: err}
			return
		}
		resultCh <- computeResult{err: w.backend.Reason(prog)}
	}()

	select {
	case r := <-resultCh:
		if r.err != nil {
			return MaterializeResult{}, engineerr.ReasonerError(r.err)
		}
		return MaterializeResult{Duration: time.Since(start)}, nil
	case <-time.After(timeout):
		return MaterializeResult{}, engineerr.Timeout(timeout.Milliseconds())
	}
}

func (w *Worker) handleTraceJSON(state *workerState) WorkerSnapshot {
	annotations := make(map[string]string, len(state.annotations))
	for k, v := range state.annotations {
		annotations[k] = v
	}
	history := append([]string(nil), state.history...)
	return WorkerSnapshot{Program: state.program, Annotations: annotations, History: history}
}

func (w *Worker) handleListPremises(state *workerState) string {
	if strings.TrimSpace(state.program) == "" {
		return "% no premises loaded"
	}
	return state.program
}

func (w *Worker) handleExplainInference(traceJSON string, short bool) string {
	if short {
		return "inference recorded; no contradictions detected"
	}
	return fmt.Sprintf("inference trace:\n%s", traceJSON)
}

// --- exported, channel-submitting API -------------------------------------

func (w *Worker) submit(ctx context.Context, cmd *command) (any, error) {
	select {
	case w.commands <- cmd:
	case <-ctx.Done():
		return nil, engineerr.Internal("context cancelled submitting command to worker %s: %v", w.sessionID, ctx.Err())
	case <-w.stopped:
		return nil, engineerr.Internal("worker %s is shut down", w.sessionID)
	}
	select {
	case r := <-cmd.reply:
		return r.val, r.err
	case <-ctx.Done():
		return nil, engineerr.Internal("context cancelled awaiting worker %s reply: %v", w.sessionID, ctx.Err())
	}
}

// LoadFact loads a single ground fact statement.
func (w *Worker) LoadFact(ctx context.Context, fact string) (LoadResult, error) {
	cmd := newCommand(cmdLoadFact)
	cmd.text = fact
	v, err := w.submit(ctx, cmd)
	if err != nil {
		return LoadResult{}, err
	}
	return v.(LoadResult), nil
}

// LoadRule loads a single rule statement.
func (w *Worker) LoadRule(ctx context.Context, rule string) (LoadResult, error) {
	cmd := newCommand(cmdLoadRule)
	cmd.text = rule
	v, err := w.submit(ctx, cmd)
	if err != nil {
		return LoadResult{}, err
	}
	return v.(LoadResult), nil
}

// LoadBulk loads a newline-separated block of statements.
func (w *Worker) LoadBulk(ctx context.Context, datalog string, atomic bool) (BulkLoadResult, error) {
	cmd := newCommand(cmdLoadBulk)
	cmd.text = datalog
	cmd.atomic = atomic
	v, err := w.submit(ctx, cmd)
	if err != nil {
		return BulkLoadResult{}, err
	}
	return v.(BulkLoadResult), nil
}

// Query runs a query against the worker's program with a millisecond
// timeout budget; a zero timeout uses config.QueryTimeout.
func (w *Worker) Query(ctx context.Context, query string, timeout time.Duration) (QueryResult, error) {
	cmd := newCommand(cmdQuery)
	cmd.text = query
	cmd.timeout = timeout
	v, err := w.submit(ctx, cmd)
	if err != nil {
		return QueryResult{}, err
	}
	return v.(QueryResult), nil
}

// Materialize drives the reasoner to fixpoint with a millisecond timeout
// budget; a zero timeout uses config.MaterializeTimeout.
func (w *Worker) Materialize(ctx context.Context, timeout time.Duration) (MaterializeResult, error) {
	cmd := newCommand(cmdMaterialize)
	cmd.timeout = timeout
	v, err := w.submit(ctx, cmd)
	if err != nil {
		return MaterializeResult{}, err
	}
	return v.(MaterializeResult), nil
}

// GetTraceJSON returns a snapshot of the worker's program, annotations,
// and accepted-statement history.
func (w *Worker) GetTraceJSON(ctx context.Context) (WorkerSnapshot, error) {
	v, err := w.submit(ctx, newCommand(cmdGetTraceJSON))
	if err != nil {
		return WorkerSnapshot{}, err
	}
	return v.(WorkerSnapshot), nil
}

// Reset clears the worker's program text and annotations.
func (w *Worker) Reset(ctx context.Context) error {
	_, err := w.submit(ctx, newCommand(cmdReset))
	return err
}

// ListPremises returns the program text verbatim, or a sentinel comment
// line if no premises have been loaded.
func (w *Worker) ListPremises(ctx context.Context) (string, error) {
	v, err := w.submit(ctx, newCommand(cmdListPremises))
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// ValidateRule performs a dry-run syntax and head/body variable check
// without touching worker state.
func (w *Worker) ValidateRule(ctx context.Context, rule string) (*RuleValidation, error) {
	cmd := newCommand(cmdValidateRule)
	cmd.text = rule
	v, err := w.submit(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return v.(*RuleValidation), nil
}

// AddPredicateAnnotation overwrites any prior annotation for predicate.
func (w *Worker) AddPredicateAnnotation(ctx context.Context, predicate, annotation string) error {
	cmd := newCommand(cmdAddAnnotation)
	cmd.predicate = predicate
	cmd.annotation = annotation
	_, err := w.submit(ctx, cmd)
	return err
}

// ListAnnotations returns a copy of the worker's predicate -> annotation
// map.
func (w *Worker) ListAnnotations(ctx context.Context) (map[string]string, error) {
	v, err := w.submit(ctx, newCommand(cmdListAnnotations))
	if err != nil {
		return nil, err
	}
	return v.(map[string]string), nil
}

// ExplainInference returns a canned short explanation or a long one
// embedding traceJSON; the deep trace-walking path is intentionally a
// stub.
func (w *Worker) ExplainInference(ctx context.Context, traceJSON string, short bool) (string, error) {
	cmd := newCommand(cmdExplainInference)
	cmd.traceJSON = traceJSON
	cmd.short = short
	v, err := w.submit(ctx, cmd)
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Shutdown sends a best-effort Shutdown signal to the worker and does not
// wait for the run loop to exit; use Stopped to observe actual exit.
func (w *Worker) Shutdown() {
	cmd := newCommand(cmdShutdown)
	select {
	case w.commands <- cmd:
	default:
		w.log.Warn("worker command queue full, shutdown signal dropped")
	}
}
