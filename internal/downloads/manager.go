// Package downloads keeps the offline pack in sync with the user's
// edition choices: it downloads surahs in batches, caches their audio,
// reports progress, supports cancellation and tracks staleness.
package downloads

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/quransync/internal/entities"
	"github.com/mrlokans/quransync/internal/logging"
	"github.com/mrlokans/quransync/internal/quranapi"
	"github.com/mrlokans/quransync/internal/resolver"
)

const (
	DefaultUnitBatchSize  = 3
	DefaultAudioBatchSize = 5
)

// SurahResolver produces merged surahs.
type SurahResolver interface {
	ResolveSurah(ctx context.Context, number int, reciterID, translationID string, opts resolver.Options) (*entities.SurahDetail, error)
}

// OfflineStore persists downloaded surahs and their metadata.
type OfflineStore interface {
	GetSurah(ctx context.Context, number int) (*entities.SurahDetail, error)
	GetSurahMeta(ctx context.Context, number int) (*entities.SurahMeta, error)
	SaveSurah(ctx context.Context, detail *entities.SurahDetail, meta entities.SurahMeta) error
	ListSurahMeta(ctx context.Context) ([]entities.SurahMeta, error)
	CountSurahMeta(ctx context.Context) (int, error)
	GetMetadata(ctx context.Context) (*entities.OfflineMetadata, error)
	SetMetadata(ctx context.Context, meta entities.OfflineMetadata) error
	ClearAudioFlags(ctx context.Context) (int, error)
	DeleteSurah(ctx context.Context, number int) error
	ClearAll(ctx context.Context) error
}

// AudioFetcher downloads audio bytes, reporting quranapi.ErrNotFound for 404.
type AudioFetcher interface {
	FetchAudio(ctx context.Context, url string) ([]byte, error)
}

// AudioCache stores audio keyed by source URL.
type AudioCache interface {
	Has(url string) bool
	Put(url string, data []byte) error
	Remove(url string) error
	Clear() error
	Stats() (count int, size int64, err error)
}

// ProgressReporter records run progress outside the process (optional).
type ProgressReporter interface {
	StartSync(runID string, totalItems int) error
	UpdateProgress(runID string, processed, succeeded, failed, percent int, currentItem string) error
	CompleteSync(runID string, status entities.SyncStatus, errorMsg string) error
}

// ProgressFunc receives the rounded completion percentage and the English
// name of the surah that just finished.
type ProgressFunc func(percent int, label string)

// Request describes one sync run.
type Request struct {
	Surahs        []entities.Surah
	TranslationID string
	ReciterID     string
	IncludeAudio  bool
	IncludeTafsir bool
	TafsirID      string
}

// Result summarizes a run. Failed surahs were skipped without aborting
// the run.
type Result struct {
	RunID     string `json:"run_id"`
	Requested int    `json:"requested"`
	Completed []int  `json:"completed"`
	Failed    []int  `json:"failed,omitempty"`
	Cancelled bool   `json:"cancelled"`
}

type Options struct {
	UnitBatchSize  int
	AudioBatchSize int
}

type Manager struct {
	resolver SurahResolver
	store    OfflineStore
	fetcher  AudioFetcher
	cache    AudioCache
	reporter ProgressReporter

	unitBatch  int
	audioBatch int
	now        func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	surahLocks keyedMutex
}

func NewManager(res SurahResolver, store OfflineStore, fetcher AudioFetcher, cache AudioCache, opts Options) *Manager {
	if opts.UnitBatchSize <= 0 {
		opts.UnitBatchSize = DefaultUnitBatchSize
	}
	if opts.AudioBatchSize <= 0 {
		opts.AudioBatchSize = DefaultAudioBatchSize
	}
	return &Manager{
		resolver:   res,
		store:      store,
		fetcher:    fetcher,
		cache:      cache,
		unitBatch:  opts.UnitBatchSize,
		audioBatch: opts.AudioBatchSize,
		now:        time.Now,
	}
}

// SetProgressReporter sets the progress reporter for sync runs (optional).
func (m *Manager) SetProgressReporter(reporter ProgressReporter) {
	m.reporter = reporter
}

// SetClock overrides the time source used for timestamps.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// stopLocked cancels the active run and waits for it to unwind. m.mu is
// held on entry and on return.
func (m *Manager) stopLocked() {
	for m.cancel != nil {
		m.cancel()
		done := m.done
		m.mu.Unlock()
		<-done
		m.mu.Lock()
	}
}

// Stop cancels the active run, if any, and waits until it has returned.
func (m *Manager) Stop() {
	m.mu.Lock()
	m.stopLocked()
	m.mu.Unlock()
}

// begin cancels and waits out any active run, then registers a new one.
func (m *Manager) begin(ctx context.Context) (context.Context, func()) {
	m.mu.Lock()
	m.stopLocked()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel, m.done = cancel, done
	m.mu.Unlock()

	return runCtx, func() {
		cancel()
		m.mu.Lock()
		if m.done == done {
			m.cancel, m.done = nil, nil
		}
		m.mu.Unlock()
		close(done)
	}
}

// Cancel aborts the active run, if any, and reports whether one was running.
func (m *Manager) Cancel() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel == nil {
		return false
	}
	m.cancel()
	return true
}

// IsRunning reports whether a run is active.
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

// Sync downloads req.Surahs in sequential batches whose members run
// concurrently. Starting a run cancels the previous one. It returns
// quranapi.ErrCancelled when the run was cancelled; per-surah failures are
// listed in Result.Failed.
func (m *Manager) Sync(ctx context.Context, req Request, onProgress ProgressFunc) (*Result, error) {
	runCtx, finish := m.begin(ctx)
	defer finish()

	return m.run(runCtx, uuid.NewString(), req, onProgress)
}

// Start claims the run slot before returning, so of two calls the later
// one always wins, then performs the sync in the background. onDone, when
// set, receives the outcome once the run has returned.
func (m *Manager) Start(ctx context.Context, req Request, onDone func(*Result, error)) string {
	runCtx, finish := m.begin(ctx)
	runID := uuid.NewString()

	go func() {
		result, err := m.run(runCtx, runID, req, nil)
		finish()
		if onDone != nil {
			onDone(result, err)
		}
	}()
	return runID
}

func (m *Manager) run(runCtx context.Context, runID string, req Request, onProgress ProgressFunc) (*Result, error) {
	total := len(req.Surahs)
	result := &Result{RunID: runID, Requested: total, Completed: []int{}}

	log := logging.With().Str("run_id", runID).Logger()
	log.Info().Int("surahs", total).Str("translation", req.TranslationID).Str("reciter", req.ReciterID).
		Bool("audio", req.IncludeAudio).Bool("tafsir", req.IncludeTafsir).Msg("Starting offline sync")

	m.reportStart(runID, total)

	var progressMu sync.Mutex
	failed := 0
	for start := 0; start < total; start += m.unitBatch {
		if runCtx.Err() != nil {
			break
		}
		end := min(start+m.unitBatch, total)

		var wg sync.WaitGroup
		for _, surah := range req.Surahs[start:end] {
			wg.Add(1)
			go func(surah entities.Surah) {
				defer wg.Done()
				err := m.syncSurah(runCtx, surah, req)

				progressMu.Lock()
				defer progressMu.Unlock()
				switch {
				case err == nil:
					result.Completed = append(result.Completed, surah.Number)
					done := len(result.Completed)
					percent := int(math.Round(float64(done) / float64(total) * 100))
					if onProgress != nil {
						onProgress(percent, surah.EnglishName)
					}
					m.reportProgress(runID, done+failed, done, failed, percent, surah.EnglishName)
				case errors.Is(err, quranapi.ErrCancelled):
					log.Debug().Int("surah", surah.Number).Msg("Surah sync cancelled")
				default:
					failed++
					result.Failed = append(result.Failed, surah.Number)
					log.Error().Err(err).Int("surah", surah.Number).Msg("Failed to download surah")
					done := len(result.Completed)
					m.reportProgress(runID, done+failed, done, failed, int(math.Round(float64(done)/float64(total)*100)), surah.EnglishName)
				}
			}(surah)
		}
		wg.Wait()
	}

	sort.Ints(result.Completed)
	sort.Ints(result.Failed)

	if runCtx.Err() != nil {
		result.Cancelled = true
		m.reportComplete(runID, entities.SyncStatusCancelled, "")
		log.Info().Int("completed", len(result.Completed)).Msg("Offline sync cancelled")
		return result, quranapi.ErrCancelled
	}

	if err := m.updateGlobalMetadata(runCtx, req); err != nil {
		m.reportComplete(runID, entities.SyncStatusFailed, err.Error())
		return result, err
	}

	msg := ""
	if len(result.Failed) > 0 {
		msg = fmt.Sprintf("%d of %d surahs failed", len(result.Failed), total)
	}
	m.reportComplete(runID, entities.SyncStatusCompleted, msg)
	log.Info().Int("completed", len(result.Completed)).Int("failed", len(result.Failed)).Msg("Offline sync finished")

	return result, nil
}

// syncSurah resolves, merges, caches audio for and persists one surah.
func (m *Manager) syncSurah(ctx context.Context, surah entities.Surah, req Request) error {
	if ctx.Err() != nil {
		return quranapi.ErrCancelled
	}

	tafsirID := ""
	if req.IncludeTafsir {
		tafsirID = req.TafsirID
	}
	detail, err := m.resolver.ResolveSurah(ctx, surah.Number, req.ReciterID, req.TranslationID, resolver.Options{
		ForceNetwork:  true,
		IncludeTafsir: req.IncludeTafsir,
		TafsirID:      tafsirID,
	})
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return quranapi.ErrCancelled
	}

	unlock := m.surahLocks.Lock(surah.Number)
	defer unlock()

	existingMeta, err := m.store.GetSurahMeta(ctx, surah.Number)
	if err != nil {
		logging.Warn().Err(err).Int("surah", surah.Number).Msg("Failed to read surah metadata")
		existingMeta = nil
	}

	if !req.IncludeTafsir {
		existing, err := m.store.GetSurah(ctx, surah.Number)
		if err != nil {
			logging.Warn().Err(err).Int("surah", surah.Number).Msg("Failed to read stored surah")
		}
		if existing != nil {
			PreserveTafsir(detail, existing)
		}
	}

	if req.IncludeAudio {
		if err := m.CacheSurahAudio(ctx, detail, req.ReciterID); err != nil {
			return err
		}
	}
	if ctx.Err() != nil {
		return quranapi.ErrCancelled
	}

	meta := BuildMeta(detail, req.TranslationID, req.ReciterID, tafsirID, req.IncludeAudio, existingMeta, m.now())
	// Once started, the two writes complete even if the run is cancelled.
	if err := m.store.SaveSurah(context.WithoutCancel(ctx), detail, meta); err != nil {
		return err
	}
	return nil
}

func (m *Manager) updateGlobalMetadata(ctx context.Context, req Request) error {
	count, err := m.store.CountSurahMeta(ctx)
	if err != nil {
		return fmt.Errorf("count downloaded surahs: %w", err)
	}

	meta := entities.OfflineMetadata{
		LastUpdated:     m.now(),
		TranslationID:   req.TranslationID,
		ReciterID:       req.ReciterID,
		TotalDownloaded: count,
	}
	if req.IncludeTafsir {
		meta.TafsirID = req.TafsirID
	}
	if err := m.store.SetMetadata(ctx, meta); err != nil {
		return fmt.Errorf("update offline metadata: %w", err)
	}
	return nil
}

// PreserveTafsir copies tafsir text from a previously stored copy into
// fresh ayahs that have none, matching by position.
func PreserveTafsir(fresh, existing *entities.SurahDetail) {
	for i := range fresh.Ayahs {
		if i >= len(existing.Ayahs) {
			break
		}
		if fresh.Ayahs[i].Tafsir == "" {
			fresh.Ayahs[i].Tafsir = existing.Ayahs[i].Tafsir
		}
	}
}

// BuildMeta computes the metadata stored next to a synced surah. The tafsir
// edition sticks from the previous record when none was requested, and
// HasAudio survives only while the reciter is unchanged.
func BuildMeta(detail *entities.SurahDetail, translationID, reciterID, tafsirID string, includeAudio bool, existing *entities.SurahMeta, now time.Time) entities.SurahMeta {
	meta := entities.SurahMeta{
		Number:         detail.Number,
		Name:           detail.Name,
		EnglishName:    detail.EnglishName,
		NumberOfAyahs:  detail.NumberOfAyahs,
		RevelationType: detail.RevelationType,
		DownloadedAt:   now,
		TranslationID:  translationID,
		ReciterID:      reciterID,
		TafsirID:       tafsirID,
		HasAudio:       includeAudio,
	}
	if existing != nil {
		if meta.TafsirID == "" {
			meta.TafsirID = existing.TafsirID
		}
		if existing.HasAudio && existing.ReciterID == reciterID {
			meta.HasAudio = true
		}
	}
	return meta
}

// IsStale reports whether the stored pack was built with editions other
// than the current preferences. A stored tafsir edition only matters when
// one was recorded. Nothing downloaded is never stale.
func IsStale(global *entities.OfflineMetadata, prefs entities.Preferences) bool {
	if global == nil {
		return false
	}
	if global.TranslationID != prefs.TranslationID || global.ReciterID != prefs.ReciterID {
		return true
	}
	return global.TafsirID != "" && global.TafsirID != prefs.TafsirID
}

func (m *Manager) reportStart(runID string, total int) {
	if m.reporter == nil {
		return
	}
	if err := m.reporter.StartSync(runID, total); err != nil {
		logging.Warn().Err(err).Msg("Failed to record sync start")
	}
}

func (m *Manager) reportProgress(runID string, processed, succeeded, failed, percent int, current string) {
	if m.reporter == nil {
		return
	}
	if err := m.reporter.UpdateProgress(runID, processed, succeeded, failed, percent, current); err != nil {
		logging.Warn().Err(err).Msg("Failed to record sync progress")
	}
}

func (m *Manager) reportComplete(runID string, status entities.SyncStatus, msg string) {
	if m.reporter == nil {
		return
	}
	if err := m.reporter.CompleteSync(runID, status, msg); err != nil {
		logging.Warn().Err(err).Msg("Failed to record sync completion")
	}
}
