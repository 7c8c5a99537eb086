// Package explorer orchestrates the read-only exploration workflow
// behind the dashboard: resolve a pooled database handle, probe
// connectivity, list tables, fetch bounded previews, enumerate and
// load flat-file datasets, and run ad-hoc queries.
//
// The page re-renders in full on every request, so the expensive steps
// are memoized here: the database handle for the process lifetime
// (keyed by connection URL) and the listing/preview results for 60
// seconds, keyed by their parameters.
package explorer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tablero-dev/tablero/internal/cache"
	"github.com/tablero-dev/tablero/internal/database"
	"github.com/tablero-dev/tablero/internal/database/mysql"
	"github.com/tablero-dev/tablero/internal/database/postgres"
	"github.com/tablero-dev/tablero/internal/dataset"
	"github.com/tablero-dev/tablero/internal/errs"
	"github.com/tablero-dev/tablero/internal/filestore"
	"github.com/tablero-dev/tablero/internal/logger"
)

const (
	// resultTTL is how long table listings, previews, and dataset
	// listings stay memoized. Expiry is purely time-based.
	resultTTL = 60 * time.Second

	// AdHocMaxRows caps how many rows an ad-hoc query returns for display.
	AdHocMaxRows = 200

	// DatasetPreviewRows caps how many dataset rows are shown.
	DatasetPreviewRows = 100

	// DefaultPreviewLimit is the table preview row limit when the UI
	// does not specify one.
	DefaultPreviewLimit = 100
)

// Ref identifies one browsable dataset across sources.
type Ref struct {
	Source string // "local" or "minio"
	Path   string // absolute file path, or object key
	Label  string // what the selector shows
}

// ID returns the stable identifier the UI round-trips in form values.
func (r Ref) ID() string {
	return r.Source + ":" + r.Path
}

// Options configures an Explorer.
type Options struct {
	Database    *database.Config
	DatasetsDir string
	Store       filestore.Store // optional object-store dataset source
	Logger      *logger.Logger

	// OpenDB overrides how the pooled handle is created. Tests inject
	// mocked drivers here; the default dispatches on Database.Driver.
	OpenDB func(ctx context.Context, cfg *database.Config) (database.DB, error)
}

type previewKey struct {
	Table string
	Limit int
}

// Explorer is the dashboard controller. Safe for concurrent use.
type Explorer struct {
	dbCfg       *database.Config
	datasetsDir string
	store       filestore.Store
	log         *logger.Logger
	openDB      func(ctx context.Context, cfg *database.Config) (database.DB, error)

	mu    sync.Mutex
	db    database.DB
	dbURL string

	tables   *cache.Memo[string, []string]
	previews *cache.Memo[previewKey, *database.ResultSet]
	listings *cache.Memo[string, []Ref]
}

// New creates an Explorer. The database handle is not opened here: the
// first operation that needs it opens it, and an open failure is
// reported for that render cycle and retried on the next one.
func New(opts Options) *Explorer {
	if opts.Logger == nil {
		opts.Logger = logger.New(nil)
	}
	openDB := opts.OpenDB
	if openDB == nil {
		openDB = openDriver
	}
	return &Explorer{
		dbCfg:       opts.Database,
		datasetsDir: opts.DatasetsDir,
		store:       opts.Store,
		log:         opts.Logger,
		openDB:      openDB,
		tables:      cache.New[string, []string](resultTTL),
		previews:    cache.New[previewKey, *database.ResultSet](resultTTL),
		listings:    cache.New[string, []Ref](resultTTL),
	}
}

func openDriver(ctx context.Context, cfg *database.Config) (database.DB, error) {
	if cfg.Driver == database.DriverPostgres {
		return postgres.New(ctx, cfg)
	}
	return mysql.New(ctx, cfg)
}

// ConnectionURL returns the canonical URL of the configured database.
func (e *Explorer) ConnectionURL() string {
	return e.dbCfg.URL()
}

// Close releases the pooled handle if one was opened.
func (e *Explorer) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db != nil {
		e.db.Close()
		e.db = nil
	}
}

// handle returns the process-lifetime pooled handle, opening it on
// first use. Idempotent for an identical connection URL.
func (e *Explorer) handle(ctx context.Context) (database.DB, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	url := e.dbCfg.URL()
	if e.db != nil && e.dbURL == url {
		return e.db, nil
	}
	if e.db != nil {
		e.db.Close()
		e.db = nil
	}

	db, err := e.openDB(ctx, e.dbCfg)
	if err != nil {
		return nil, err
	}
	e.db = db
	e.dbURL = url
	e.log.With().Str("url", e.dbCfg.RedactedURL()).Logger().Info("database handle opened")
	return db, nil
}

func (e *Explorer) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.dbCfg.QueryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.dbCfg.QueryTimeout)
}

// Status runs the connectivity probes and returns the current schema
// and server version. Any failure here, opening the handle included,
// is a connectivity failure: the caller halts the rest of the render.
func (e *Explorer) Status(ctx context.Context) (*database.ServerInfo, error) {
	db, err := e.handle(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "could not connect to the database", err)
	}

	qctx, cancel := e.queryCtx(ctx)
	defer cancel()

	info, err := db.ServerInfo(qctx)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "could not connect to the database", err)
	}
	return info, nil
}

// Tables lists the user tables, memoized for 60 seconds per connection URL.
func (e *Explorer) Tables(ctx context.Context) ([]string, error) {
	return e.tables.GetOrCompute(e.dbCfg.URL(), func() ([]string, error) {
		db, err := e.handle(ctx)
		if err != nil {
			return nil, err
		}
		qctx, cancel := e.queryCtx(ctx)
		defer cancel()
		return db.ListTables(qctx)
	})
}

// Preview fetches up to limit rows of the named table, memoized for 60
// seconds per (table, limit) pair.
func (e *Explorer) Preview(ctx context.Context, table string, limit int) (*database.ResultSet, error) {
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}
	return e.previews.GetOrCompute(previewKey{Table: table, Limit: limit}, func() (*database.ResultSet, error) {
		db, err := e.handle(ctx)
		if err != nil {
			return nil, err
		}
		qctx, cancel := e.queryCtx(ctx)
		defer cancel()
		return db.Preview(qctx, table, limit)
	})
}

// RunQuery executes a free-text query verbatim and returns at most
// AdHocMaxRows rows. Results are never cached: the query box always
// hits the database.
func (e *Explorer) RunQuery(ctx context.Context, query string) (*database.ResultSet, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "query is empty")
	}

	db, err := e.handle(ctx)
	if err != nil {
		return nil, err
	}
	qctx, cancel := e.queryCtx(ctx)
	defer cancel()
	return db.Query(qctx, query, AdHocMaxRows)
}

// Datasets enumerates the browsable datasets across all configured
// sources, sorted by label, memoized for 60 seconds.
func (e *Explorer) Datasets(ctx context.Context) ([]Ref, error) {
	return e.listings.GetOrCompute("datasets", func() ([]Ref, error) {
		refs, err := e.localDatasets()
		if err != nil {
			return nil, err
		}

		if e.store != nil {
			remote, err := e.remoteDatasets(ctx)
			if err != nil {
				// A broken object store must not hide the local files;
				// surface it in the log and carry on.
				e.log.ErrorWith("object-store dataset listing failed", err, nil)
			} else {
				refs = append(refs, remote...)
			}
		}

		sort.Slice(refs, func(i, j int) bool { return refs[i].Label < refs[j].Label })
		return refs, nil
	})
}

func (e *Explorer) localDatasets() ([]Ref, error) {
	paths, err := dataset.ListDir(e.datasetsDir)
	if err != nil {
		return nil, err
	}

	refs := make([]Ref, 0, len(paths))
	base := filepath.Dir(e.datasetsDir)
	for _, path := range paths {
		label, err := filepath.Rel(base, path)
		if err != nil {
			label = path
		}
		refs = append(refs, Ref{Source: "local", Path: path, Label: label})
	}
	return refs, nil
}

func (e *Explorer) remoteDatasets(ctx context.Context) ([]Ref, error) {
	objects, err := e.store.ListObjects(ctx, "")
	if err != nil {
		return nil, err
	}

	var refs []Ref
	for _, obj := range objects {
		if !dataset.Supported(obj.Key) {
			continue
		}
		refs = append(refs, Ref{Source: "minio", Path: obj.Key, Label: "minio/" + obj.Key})
	}
	return refs, nil
}

// FindDataset resolves a selector ID back to a listed Ref. Only refs
// present in the current listing resolve: the UI cannot be steered to
// arbitrary paths.
func (e *Explorer) FindDataset(ctx context.Context, id string) (Ref, bool) {
	refs, err := e.Datasets(ctx)
	if err != nil {
		return Ref{}, false
	}
	for _, ref := range refs {
		if ref.ID() == id {
			return ref, true
		}
	}
	return Ref{}, false
}

// DatasetPreview loads the referenced dataset fully and returns its
// head, capped at DatasetPreviewRows.
func (e *Explorer) DatasetPreview(ctx context.Context, ref Ref) (*dataset.Table, error) {
	var (
		table *dataset.Table
		err   error
	)
	switch ref.Source {
	case "local":
		table, err = dataset.Load(ref.Path)
	case "minio":
		table, err = e.loadRemote(ctx, ref.Path)
	default:
		return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unknown dataset source %q", ref.Source))
	}
	if err != nil {
		return nil, err
	}
	return table.Head(DatasetPreviewRows), nil
}

func (e *Explorer) loadRemote(ctx context.Context, key string) (*dataset.Table, error) {
	if e.store == nil {
		return nil, errs.New(errs.ErrKindInvalidInput, "no object store configured")
	}

	obj, err := e.store.GetObject(ctx, key)
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	// Objects are read fully: the parquet decoder needs random access
	// and dataset files are small by design.
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindLoadFailed, "failed to read object", err)
	}

	if strings.EqualFold(filepath.Ext(key), ".parquet") {
		return dataset.DecodeParquet(bytes.NewReader(data), int64(len(data)))
	}
	return dataset.DecodeCSV(bytes.NewReader(data))
}
