package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/quransync/internal/logging"
)

// Client runs offline syncs and daily verse prefetches on a backlite queue
// kept in its own SQLite file, so queue churn never contends with reads of
// the offline library.
type Client struct {
	queue   *backlite.Client
	db      *sql.DB
	workers int
	started atomic.Bool
}

// DBPath derives the queue database from the library database:
// data/quran.db becomes data/quran-tasks.db.
func DBPath(libraryDBPath string) string {
	ext := filepath.Ext(libraryDBPath)
	return strings.TrimSuffix(libraryDBPath, ext) + "-tasks" + ext
}

func openQueueDB(path string, workers int) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// Workers plus headroom for enqueues from HTTP handlers and the scheduler.
	db.SetMaxOpenConns(workers + 4)
	db.SetMaxIdleConns(workers + 1)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

func NewClient(libraryDBPath string, cfg Config) (*Client, error) {
	path := DBPath(libraryDBPath)
	db, err := openQueueDB(path, cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("open task queue database %s: %w", path, err)
	}

	queue, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          logging.TaskLogger{},
	})
	if err == nil {
		err = queue.Install()
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("set up task queue: %w", err)
	}

	return &Client{queue: queue, db: db, workers: cfg.Workers}, nil
}

// Register adds the processors for sync and prefetch tasks. Call before Start.
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.queue.Register(q)
	}
}

// Start processes tasks until ctx ends or Stop is called. Repeated calls
// are no-ops.
func (c *Client) Start(ctx context.Context) {
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	logging.Info().Int("workers", c.workers).Msg("Task queue started")
	c.queue.Start(ctx)
}

// Stop waits for running tasks until ctx ends and reports whether they all
// finished. A running offline sync observes its own cancellation first.
func (c *Client) Stop(ctx context.Context) bool {
	if !c.started.Load() {
		return true
	}
	if c.queue.Stop(ctx) {
		logging.Info().Msg("Task queue stopped")
		return true
	}
	logging.Warn().Msg("Task queue stop timed out with tasks still running")
	return false
}

func (c *Client) Close() error {
	return c.db.Close()
}

// Add enqueues tasks; the caller commits them with Save.
func (c *Client) Add(tasks ...backlite.Task) *backlite.TaskAddOp {
	return c.queue.Add(tasks...)
}

func (c *Client) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return c.queue.Status(ctx, taskID)
}
