// Package intake loads cases dropped as JSON or JSONL files into a folder.
package intake

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Ashfaaq98/customer-issues/internal/metrics"
	"github.com/Ashfaaq98/customer-issues/internal/store"
)

// DoneSuffix is appended to processed files: JSON files in watch mode, and
// every file in one-shot mode with MarkDone.
const DoneSuffix = ".done"

// DefaultSettleDelay is how long a JSON file must go without writes before
// watch mode reads it.
const DefaultSettleDelay = 500 * time.Millisecond

// Saver persists intake records. *service.Service satisfies it.
type Saver interface {
	CategoryID(ctx context.Context, name string) (int64, error)
	IntakeCase(ctx context.Context, c store.Case, actor, source string) (int64, error)
}

// FolderOptions controls intake behaviour.
type FolderOptions struct {
	Dir      string
	Watch    bool
	Patterns []string // e.g. []string{"*.jsonl", "*.json"}
	Actor    string   // employee recorded as author, default "intake"
	// MarkDone renames processed files with DoneSuffix in one-shot mode.
	// Watch mode always renames JSON files once ingested so a restart does
	// not save them again.
	MarkDone bool
	// SettleDelay defaults to DefaultSettleDelay.
	SettleDelay time.Duration
	// When true and in Watch mode, start JSONL files at EOF on startup to avoid
	// re-ingesting existing lines each time the app starts.
	TailFromEnd bool
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
}

// Stats counts processed records.
type Stats struct {
	Ingested int
	Failed   int
}

// FolderIngestor ingests case records from a directory (one-shot or watch mode).
type FolderIngestor struct {
	saver  Saver
	opts   FolderOptions
	logger *zap.Logger

	offsets map[string]int64 // per-file tail offset for jsonl
	mu      sync.Mutex
	stats   Stats
}

// NewFolderIngestor constructs a folder ingestor.
func NewFolderIngestor(saver Saver, opts FolderOptions) *FolderIngestor {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(opts.Patterns) == 0 {
		opts.Patterns = []string{"*.jsonl", "*.json"}
	}
	if opts.Actor == "" {
		opts.Actor = "intake"
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	return &FolderIngestor{
		saver:   saver,
		opts:    opts,
		logger:  logger.Named("intake"),
		offsets: make(map[string]int64),
	}
}

// Stats returns the counters so far.
func (fi *FolderIngestor) Stats() Stats {
	fi.mu.Lock()
	defer fi.mu.Unlock()
	return fi.stats
}

// Run executes the intake per options (one-shot or watch).
func (fi *FolderIngestor) Run(ctx context.Context) error {
	if err := os.MkdirAll(fi.opts.Dir, 0755); err != nil {
		return fmt.Errorf("create intake dir: %w", err)
	}

	if err := fi.scanOnce(ctx); err != nil {
		return err
	}

	if !fi.opts.Watch {
		s := fi.Stats()
		fi.logger.Info("completed one-shot intake", zap.Int("ingested", s.Ingested), zap.Int("failed", s.Failed))
		return nil
	}

	return fi.watchLoop(ctx)
}

func (fi *FolderIngestor) matches(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, DoneSuffix) {
		return false
	}
	for _, pat := range fi.opts.Patterns {
		p := strings.TrimSpace(strings.ToLower(pat))
		if ok, _ := filepath.Match(p, lower); ok {
			return true
		}
	}
	return false
}

func isJSONL(name string) bool { return strings.HasSuffix(strings.ToLower(name), ".jsonl") }

func (fi *FolderIngestor) scanOnce(ctx context.Context) error {
	entries, err := os.ReadDir(fi.opts.Dir)
	if err != nil {
		return fmt.Errorf("read dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !fi.matches(e.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(fi.opts.Dir, e.Name())

		if isJSONL(e.Name()) {
			if fi.opts.Watch && fi.opts.TailFromEnd {
				if st, err := os.Stat(path); err == nil {
					fi.setOffset(path, st.Size())
				}
				continue
			}
			offset, err := fi.processJSONL(ctx, path, 0)
			if err != nil {
				fi.logger.Warn("error processing file", zap.String("path", path), zap.Error(err))
				fi.fail()
				continue
			}
			fi.setOffset(path, offset)
			if fi.opts.MarkDone && !fi.opts.Watch {
				fi.markDone(path)
			}
			continue
		}
		fi.ingestJSONFile(ctx, path)
	}
	return nil
}

// ingestJSONFile saves the records of one JSON file and renames it so it is
// not read again. Files that fail to parse stay in place.
func (fi *FolderIngestor) ingestJSONFile(ctx context.Context, path string) {
	if err := fi.processJSONFile(ctx, path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Renamed or removed before it settled.
			return
		}
		fi.logger.Warn("error processing file", zap.String("path", path), zap.Error(err))
		fi.fail()
		return
	}
	if fi.opts.Watch || fi.opts.MarkDone {
		fi.markDone(path)
	}
}

func (fi *FolderIngestor) markDone(path string) {
	if err := os.Rename(path, path+DoneSuffix); err != nil {
		fi.logger.Warn("failed to mark file done", zap.String("path", path), zap.Error(err))
	}
}

func (fi *FolderIngestor) watchLoop(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer w.Close()

	if err := w.Add(fi.opts.Dir); err != nil {
		return fmt.Errorf("watch add: %w", err)
	}

	fi.logger.Info("watching directory",
		zap.String("dir", fi.opts.Dir), zap.Strings("patterns", fi.opts.Patterns))
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	tick := fi.opts.SettleDelay / 2
	if tick <= 0 {
		tick = fi.opts.SettleDelay
	}
	settle := time.NewTicker(tick)
	defer settle.Stop()

	// JSON files waiting for their writes to settle, by path.
	pending := make(map[string]time.Time)

	for {
		select {
		case <-ctx.Done():
			s := fi.Stats()
			fi.logger.Info("watch stopping", zap.Int("ingested", s.Ingested), zap.Int("failed", s.Failed))
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			fi.handleEvent(ctx, ev, pending)
		case now := <-settle.C:
			fi.flushSettled(ctx, pending, now)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fi.logger.Warn("watch error", zap.Error(err))
		case <-ticker.C:
			s := fi.Stats()
			fi.logger.Debug("intake progress", zap.Int("ingested", s.Ingested), zap.Int("failed", s.Failed))
		}
	}
}

func (fi *FolderIngestor) handleEvent(ctx context.Context, ev fsnotify.Event, pending map[string]time.Time) {
	name := filepath.Base(ev.Name)
	if !fi.matches(name) {
		return
	}

	if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
		if isJSONL(name) {
			newOffset, err := fi.processJSONL(ctx, ev.Name, fi.offset(ev.Name))
			if err != nil {
				fi.logger.Warn("error tailing file", zap.String("path", ev.Name), zap.Error(err))
				fi.fail()
				return
			}
			fi.setOffset(ev.Name, newOffset)
		} else {
			// Every write pushes the deadline back.
			pending[ev.Name] = time.Now().Add(fi.opts.SettleDelay)
		}
	}
	if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		delete(pending, ev.Name)
		fi.mu.Lock()
		delete(fi.offsets, ev.Name)
		fi.mu.Unlock()
	}
}

// flushSettled ingests the pending JSON files whose last write is older than
// the settle delay.
func (fi *FolderIngestor) flushSettled(ctx context.Context, pending map[string]time.Time, now time.Time) {
	for path, due := range pending {
		if now.Before(due) {
			continue
		}
		delete(pending, path)
		fi.ingestJSONFile(ctx, path)
	}
}

// processJSONL reads complete lines from startOffset and returns the offset
// after the last complete line. A trailing partial line is left for the next
// pass.
func (fi *FolderIngestor) processJSONL(ctx context.Context, path string, startOffset int64) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return startOffset, err
	}
	defer f.Close()

	if st, err := f.Stat(); err == nil && st.Size() < startOffset {
		// Truncated; start over.
		startOffset = 0
	}
	if startOffset > 0 {
		if _, err := f.Seek(startOffset, io.SeekStart); err != nil {
			return startOffset, err
		}
	}

	reader := bufio.NewReaderSize(f, 64*1024)
	offset := startOffset
	for {
		line, err := reader.ReadBytes('\n')
		if err == io.EOF {
			// Partial line without newline: wait for the writer to finish it,
			// unless this is a one-shot pass.
			if len(line) > 0 && !fi.opts.Watch {
				fi.processLine(ctx, path, line)
				offset += int64(len(line))
			}
			return offset, nil
		}
		if err != nil {
			return offset, err
		}
		offset += int64(len(line))
		fi.processLine(ctx, path, line)
	}
}

func (fi *FolderIngestor) processLine(ctx context.Context, path string, line []byte) {
	line = []byte(strings.TrimSpace(string(line)))
	if len(line) == 0 {
		return
	}
	if err := fi.processRecordJSON(ctx, path, line); err != nil {
		fi.logger.Warn("record rejected", zap.String("path", path), zap.Error(err))
		fi.fail()
	}
}

func (fi *FolderIngestor) processJSONFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	trim := strings.TrimSpace(string(data))
	if trim == "" {
		return nil
	}

	if strings.HasPrefix(trim, "[") {
		var arr []json.RawMessage
		if err := json.Unmarshal([]byte(trim), &arr); err != nil {
			return err
		}
		for _, raw := range arr {
			if err := fi.processRecordJSON(ctx, path, raw); err != nil {
				fi.logger.Warn("record rejected", zap.String("path", path), zap.Error(err))
				fi.fail()
			}
		}
		return nil
	}

	return fi.processRecordJSON(ctx, path, []byte(trim))
}

func (fi *FolderIngestor) processRecordJSON(ctx context.Context, path string, raw []byte) error {
	rec, err := ParseRecord(raw)
	if err != nil {
		return err
	}
	catID, err := fi.saver.CategoryID(ctx, rec.Category)
	if err != nil {
		return err
	}
	id, err := fi.saver.IntakeCase(ctx, rec.Case(catID), fi.opts.Actor, filepath.Base(path))
	if err != nil {
		return err
	}

	fi.mu.Lock()
	fi.stats.Ingested++
	fi.mu.Unlock()
	fi.opts.Metrics.IntakeRecord("ingested")
	fi.logger.Debug("case ingested", zap.Int64("case_id", id), zap.String("path", path))
	return nil
}

func (fi *FolderIngestor) fail() {
	fi.mu.Lock()
	fi.stats.Failed++
	fi.mu.Unlock()
	fi.opts.Metrics.IntakeRecord("failed")
}

func (fi *FolderIngestor) offset(path string) int64 {
	fi.mu.Lock()
	defer fi.mu.Unlock()
	return fi.offsets[path]
}

func (fi *FolderIngestor) setOffset(path string, off int64) {
	fi.mu.Lock()
	fi.offsets[path] = off
	fi.mu.Unlock()
}
