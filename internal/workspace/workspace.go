// Package workspace is the per-user persistence object. It is opened for a
// user at session start, writes every mutation through to the KV store and
// is closed at logout or exit.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/studybuddy/studybuddy/internal/history"
	"github.com/studybuddy/studybuddy/internal/progress"
	"github.com/studybuddy/studybuddy/internal/quiz"
	"github.com/studybuddy/studybuddy/internal/store"
)

// Keys of the persisted blobs. KeyContent holds the single material of
// older workspaces and is only read to migrate it into KeyMaterials.
const (
	KeyContent   = "content"
	KeyMaterials = "materials"
	KeyHistory   = "history"
	KeySettings  = "settings"
	KeyProgress  = "progress"
)

// DefaultBackupKeep is how many history backups are retained per user
// unless WithBackupKeep says otherwise.
const DefaultBackupKeep = 5

var (
	ErrClosed    = errors.New("workspace is closed")
	ErrNoBackups = errors.New("no history backup available")
)

// Workspace holds one user's study material, history, settings and
// progress. It is safe for concurrent use.
type Workspace struct {
	mu      sync.Mutex
	kv      store.KV
	user    string
	backups store.BackupRepo
	keep    int
	log     *zap.Logger
	now     func() time.Time
	closed  bool

	library  library
	history  *history.Log
	settings Settings
	progress progress.Data
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithBackups enables history backups before destructive operations.
func WithBackups(repo store.BackupRepo) Option {
	return func(w *Workspace) { w.backups = repo }
}

// WithBackupKeep sets how many history backups are retained.
func WithBackupKeep(n int) Option {
	return func(w *Workspace) { w.keep = max(n, 1) }
}

func WithLogger(log *zap.Logger) Option {
	return func(w *Workspace) { w.log = log }
}

// WithClock overrides time.Now for timestamps, streaks and study time.
func WithClock(now func() time.Time) Option {
	return func(w *Workspace) { w.now = now }
}

// Open loads the workspace of user from kv. Missing keys start from their
// defaults. A blob that cannot be decoded is backed up when backups are
// enabled and replaced by the default; a blob from a newer format version
// fails Open.
func Open(ctx context.Context, kv store.KV, user string, opts ...Option) (*Workspace, error) {
	w := &Workspace{
		kv:       kv,
		user:     user,
		keep:     DefaultBackupKeep,
		log:      zap.NewNop(),
		now:      time.Now,
		history:  history.NewLog(nil),
		settings: DefaultSettings(),
		progress: progress.New(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.With(zap.String("user", user))

	if err := w.loadLibrary(ctx); err != nil {
		return nil, err
	}
	var items []history.Item
	if err := w.load(ctx, KeyHistory, &items); err != nil {
		return nil, err
	}
	w.history = history.NewLog(items)
	if err := w.load(ctx, KeySettings, &w.settings); err != nil {
		return nil, err
	}
	if err := w.settings.Validate(); err != nil {
		w.log.Warn("stored settings invalid, using defaults", zap.Error(err))
		w.settings = DefaultSettings()
	}
	if err := w.load(ctx, KeyProgress, &w.progress); err != nil {
		return nil, err
	}
	w.progress = w.progress.Clone()

	w.log.Debug("workspace opened",
		zap.Int("history_items", w.history.Len()),
		zap.Int("materials", len(w.library.Materials)),
	)
	return w, nil
}

// load decodes key into v, leaving v untouched when the key is missing.
func (w *Workspace) load(ctx context.Context, key string, v any) error {
	blob, err := w.kv.Get(ctx, w.user, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}

	err = decode(blob, v)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNewerFormat):
		return fmt.Errorf("load %s: %w", key, err)
	}

	w.log.Warn("discarding unreadable blob", zap.String("key", key), zap.Error(err))
	if w.backups != nil {
		if _, berr := w.backups.Save(ctx, w.user, key+".corrupt", blob); berr != nil {
			w.log.Error("back up unreadable blob", zap.String("key", key), zap.Error(berr))
		}
	}
	return nil
}

func (w *Workspace) save(ctx context.Context, key string, v any) error {
	blob, err := encode(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := w.kv.Set(ctx, w.user, key, blob); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (w *Workspace) User() string { return w.user }

// Now reads the workspace clock.
func (w *Workspace) Now() time.Time { return w.now() }

// Close ends the workspace. Every mutation has already been written, so
// Close only rejects further use. The KV store is owned by the caller.
func (w *Workspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *Workspace) lock() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	return nil
}

// Items returns the history in insertion order.
func (w *Workspace) Items() []history.Item {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.history.Items()
}

// ItemsOfKind returns the history items of kind k.
func (w *Workspace) ItemsOfKind(k history.Kind) []history.Item {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Collect(w.history.OfKind(k))
}

func (w *Workspace) Item(id string) (history.Item, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.history.Get(id)
}

// updateHistory applies fn to a copy of the log and commits it only once
// the copy is written.
func (w *Workspace) updateHistory(ctx context.Context, fn func(l *history.Log)) error {
	next := history.NewLog(w.history.Items())
	fn(next)
	if err := w.save(ctx, KeyHistory, next.Items()); err != nil {
		return err
	}
	w.history = next
	return nil
}

// SaveItem adds it to history, replacing an item with the same id.
func (w *Workspace) SaveItem(ctx context.Context, it history.Item) error {
	if err := w.lock(); err != nil {
		return err
	}
	defer w.mu.Unlock()
	return w.updateHistory(ctx, func(l *history.Log) { l.Add(it) })
}

// DeleteItems removes the items with the given ids and returns how many
// were removed.
func (w *Workspace) DeleteItems(ctx context.Context, ids ...string) (int, error) {
	if err := w.lock(); err != nil {
		return 0, err
	}
	defer w.mu.Unlock()
	n := 0
	err := w.updateHistory(ctx, func(l *history.Log) { n = l.Delete(ids...) })
	if err != nil {
		return 0, err
	}
	return n, nil
}

// ClearHistory empties the history after taking a backup.
func (w *Workspace) ClearHistory(ctx context.Context) error {
	if err := w.lock(); err != nil {
		return err
	}
	defer w.mu.Unlock()
	if err := w.backupHistory(ctx); err != nil {
		return err
	}
	return w.updateHistory(ctx, func(l *history.Log) { l.Clear() })
}

// ImportHistory merges an exported history document and returns how many
// items were added. Nothing is merged unless the whole document is valid.
func (w *Workspace) ImportHistory(ctx context.Context, data []byte) (int, error) {
	items, err := history.ParseImport(data)
	if err != nil {
		return 0, err
	}
	if err := w.lock(); err != nil {
		return 0, err
	}
	defer w.mu.Unlock()
	if err := w.backupHistory(ctx); err != nil {
		return 0, err
	}
	added := 0
	if err := w.updateHistory(ctx, func(l *history.Log) { added = l.Merge(items) }); err != nil {
		return 0, err
	}
	w.log.Info("history imported", zap.Int("entries", len(items)), zap.Int("added", added))
	return added, nil
}

// ExportHistory encodes the history for ImportHistory.
func (w *Workspace) ExportHistory() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return history.Export(w.history.Items())
}

// RestoreHistory replaces the history with the latest backup and returns
// the number of restored items.
func (w *Workspace) RestoreHistory(ctx context.Context) (int, error) {
	if err := w.lock(); err != nil {
		return 0, err
	}
	defer w.mu.Unlock()
	if w.backups == nil {
		return 0, ErrNoBackups
	}
	b, err := w.backups.Latest(ctx, w.user, KeyHistory)
	if errors.Is(err, store.ErrNotFound) {
		return 0, ErrNoBackups
	}
	if err != nil {
		return 0, fmt.Errorf("load backup: %w", err)
	}
	var items []history.Item
	if err := decode(b.Data, &items); err != nil {
		return 0, fmt.Errorf("decode backup %d: %w", b.ID, err)
	}
	if err := w.updateHistory(ctx, func(l *history.Log) {
		l.Clear()
		l.Merge(items)
	}); err != nil {
		return 0, err
	}
	return len(items), nil
}

func (w *Workspace) backupHistory(ctx context.Context) error {
	if w.backups == nil || w.history.Len() == 0 {
		return nil
	}
	blob, err := encode(w.history.Items())
	if err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	b, err := w.backups.Save(ctx, w.user, KeyHistory, blob)
	if err != nil {
		return fmt.Errorf("back up history: %w", err)
	}
	if err := w.backups.Prune(ctx, w.user, KeyHistory, w.keep); err != nil {
		w.log.Warn("prune history backups", zap.Error(err))
	}
	w.log.Debug("history backed up", zap.Int64("backup_id", b.ID), zap.Int("items", w.history.Len()))
	return nil
}

func (w *Workspace) Settings() Settings {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.settings
}

// UpdateSettings validates and stores s.
func (w *Workspace) UpdateSettings(ctx context.Context, s Settings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if err := w.lock(); err != nil {
		return err
	}
	defer w.mu.Unlock()
	if err := w.save(ctx, KeySettings, s); err != nil {
		return err
	}
	w.settings = s
	return nil
}

// ReminderDue reports whether the daily reminder should show now: it is
// enabled, its time has passed and no quiz has been taken today.
func (w *Workspace) ReminderDue() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	return w.settings.Reminder.Due(now) && w.progress.Streaks.LastActive != progress.DateKey(now)
}

// Progress returns a copy of the progress aggregate.
func (w *Workspace) Progress() progress.Data {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.progress.Clone()
}

// RecordQuiz saves a graded quiz to history and folds it into progress. It
// returns the saved item and any newly awarded badges.
func (w *Workspace) RecordQuiz(ctx context.Context, r quiz.Result, source string) (history.Item, []string, error) {
	if err := w.lock(); err != nil {
		return history.Item{}, nil, err
	}
	defer w.mu.Unlock()

	now := w.now()
	item := history.New(history.Quiz{Result: r, SourceContent: source}, now)
	if err := w.updateHistory(ctx, func(l *history.Log) { l.Add(item) }); err != nil {
		return history.Item{}, nil, err
	}

	next := w.progress.Clone()
	awarded := next.Record(r.Outcomes(), now)
	if err := w.save(ctx, KeyProgress, next); err != nil {
		return item, nil, err
	}
	w.progress = next

	w.log.Info("quiz recorded",
		zap.String("mode", string(r.Mode)),
		zap.Int("score", r.Score),
		zap.Int("total", r.Total),
		zap.Strings("badges", awarded),
	)
	return item, awarded, nil
}

// AddStudyTime credits d to today's study time.
func (w *Workspace) AddStudyTime(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if err := w.lock(); err != nil {
		return err
	}
	defer w.mu.Unlock()
	next := w.progress.Clone()
	next.AddStudyTime(w.now(), d)
	if err := w.save(ctx, KeyProgress, next); err != nil {
		return err
	}
	w.progress = next
	return nil
}
