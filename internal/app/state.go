// Package app holds the process-wide application state: the gene annotation
// store and the currently resident modification dataset. State is mutated
// only through the defined transitions (load submitted, load complete, load
// failed, evict); query paths read it without mutation.
package app

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inodb/methview/internal/bedmod"
	"github.com/inodb/methview/internal/query"
	"github.com/inodb/methview/internal/store"
)

// Resource availability errors, reported immediately instead of returning
// silently empty results.
var (
	ErrAnnotationsNotReady = errors.New("gene annotations not loaded")
	ErrDatasetNotReady     = errors.New("no modification dataset ready")
	ErrJobNotFound         = errors.New("job not found")
)

// JobStatus is the state of a background dataset load.
type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobReady   JobStatus = "ready"
	JobFailed  JobStatus = "failed"
)

// Job tracks one dataset load. The record table is held only while the job
// is the current dataset; eviction releases the table but keeps the
// metadata.
type Job struct {
	ID        string
	Status    JobStatus
	Path      string
	Rows      int
	Error     string
	CreatedAt time.Time

	table *bedmod.Table
}

// JobInfo is a point-in-time copy of a job's public state.
type JobInfo struct {
	ID     string
	Status JobStatus
	Rows   int
	Error  string
}

// Snapshot describes overall application readiness.
type Snapshot struct {
	AnnotationsReady bool
	GeneCount        int
	DatasetReady     bool
	DatasetRows      int
	CurrentJobID     string
}

// App is the application state struct. Constructed once at startup;
// safe for concurrent use.
type App struct {
	mu         sync.RWMutex
	store      store.GeneStore
	genes      []string // cached sorted gene list
	jobs       map[string]*Job
	currentJob string
	engine     *query.Engine
	logger     *zap.Logger
}

// New creates application state over an opened gene store.
// The store may be nil; queries then fail with ErrAnnotationsNotReady until
// SetStore is called.
func New(s store.GeneStore) *App {
	a := &App{
		store:  s,
		jobs:   make(map[string]*Job),
		logger: zap.NewNop(),
	}
	if s != nil {
		a.engine = query.NewEngine(s)
	}
	return a
}

// SetLogger sets the logger for state transition messages.
func (a *App) SetLogger(l *zap.Logger) {
	a.logger = l
	if a.engine != nil {
		a.engine.SetLogger(l)
	}
}

// SetStore installs the gene store after construction (first-demand builds).
func (a *App) SetStore(s store.GeneStore) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store = s
	a.genes = nil
	a.engine = query.NewEngine(s)
}

// SubmitLoad registers a dataset load and starts it in the background,
// returning the job identifier immediately. The load either completes,
// fails, or is superseded by eviction once a later load completes; there is
// no cancellation.
func (a *App) SubmitLoad(path string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.store == nil {
		return "", ErrAnnotationsNotReady
	}

	job := &Job{
		ID:        uuid.NewString(),
		Status:    JobPending,
		Path:      path,
		CreatedAt: time.Now(),
	}
	a.jobs[job.ID] = job
	a.logger.Info("dataset load submitted", zap.String("job", job.ID), zap.String("path", path))

	go a.runLoad(job.ID, path)
	return job.ID, nil
}

// runLoad performs the load and applies the single-writer state transition.
func (a *App) runLoad(jobID, path string) {
	table, err := bedmod.LoadTable(path)

	a.mu.Lock()
	defer a.mu.Unlock()

	job, ok := a.jobs[jobID]
	if !ok {
		return
	}

	if err != nil {
		job.Status = JobFailed
		job.Error = err.Error()
		a.logger.Warn("dataset load failed", zap.String("job", jobID), zap.Error(err))
		// The previous dataset, if any, stays current and valid.
		return
	}

	job.table = table
	job.Rows = table.Len()
	job.Status = JobReady
	a.currentJob = jobID
	a.evictOthersLocked(jobID)
	a.logger.Info("dataset ready", zap.String("job", jobID), zap.Int("rows", job.Rows))
}

// evictOthersLocked drops every other job's record table so that at most
// one dataset is resident. Metadata is retained.
func (a *App) evictOthersLocked(keepJobID string) {
	for id, job := range a.jobs {
		if id != keepJobID && job.table != nil {
			job.table = nil
			a.logger.Info("dataset evicted", zap.String("job", id), zap.String("kept", keepJobID))
		}
	}
}

// Status returns the current state of a load job.
func (a *App) Status(jobID string) (JobInfo, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	job, ok := a.jobs[jobID]
	if !ok {
		return JobInfo{}, ErrJobNotFound
	}
	return JobInfo{ID: job.ID, Status: job.Status, Rows: job.Rows, Error: job.Error}, nil
}

// currentTable returns the resident table of the current ready job, if any.
func (a *App) currentTable() *bedmod.Table {
	if a.currentJob == "" {
		return nil
	}
	job := a.jobs[a.currentJob]
	if job == nil || job.Status != JobReady {
		return nil
	}
	return job.table
}

// geneList returns the cached sorted gene list, loading it on first use.
// The store fetch runs without any lock held; the write lock is taken only
// to install the cache, so concurrent queries read under RLock.
func (a *App) geneList() ([]string, error) {
	a.mu.RLock()
	genes, s := a.genes, a.store
	a.mu.RUnlock()

	if s == nil {
		return nil, ErrAnnotationsNotReady
	}
	if genes != nil {
		return genes, nil
	}

	genes, err := s.ListGenes()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	if a.store == s && a.genes == nil {
		a.genes = genes
	}
	a.mu.Unlock()
	return genes, nil
}

// Genes returns the stored gene identifiers, optionally filtered by a
// case-insensitive substring.
func (a *App) Genes(q string) ([]string, error) {
	genes, err := a.geneList()
	if err != nil {
		return nil, err
	}
	return query.FilterGenes(genes, q), nil
}

// QueryGene answers a single-gene query against the current dataset.
// Returns ErrAnnotationsNotReady or ErrDatasetNotReady when the respective
// resource is missing, and a store.NotFoundError when the identifier does
// not resolve.
func (a *App) QueryGene(geneQuery string) (*query.Result, error) {
	a.mu.RLock()
	engine := a.engine
	ready := a.store != nil
	table := a.currentTable()
	a.mu.RUnlock()

	if !ready {
		return nil, ErrAnnotationsNotReady
	}
	if table == nil {
		return nil, ErrDatasetNotReady
	}

	// The table and the store are immutable once published; the query runs
	// outside the lock.
	return engine.Gene(geneQuery, table)
}

// Snapshot reports overall readiness for status endpoints.
func (a *App) Snapshot() Snapshot {
	a.mu.RLock()
	s := Snapshot{CurrentJobID: a.currentJob}
	ready := a.store != nil
	table := a.currentTable()
	a.mu.RUnlock()

	if ready {
		s.AnnotationsReady = true
		if genes, err := a.geneList(); err == nil {
			s.GeneCount = len(genes)
		}
	}
	if table != nil {
		s.DatasetReady = true
		s.DatasetRows = table.Len()
	}
	return s
}
