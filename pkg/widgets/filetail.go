package widgets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// tailWindow is how much of the end of a file is searched for its last
// line.
const tailWindow = 4096

// FileTail shows the last non-empty line of a file and follows changes to
// it, which suits progress files written by another process.
type FileTail struct {
	path   string
	target TextSetter
	logger *slog.Logger
	// Fallback re-reads the file at this interval in case a change event
	// is missed, for example on network filesystems. Zero disables it.
	Fallback time.Duration

	last string
}

// NewFileTail returns a FileTail pushing the last line of path to target.
func NewFileTail(path string, target TextSetter, logger *slog.Logger) *FileTail {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &FileTail{
		path:     filepath.Clean(path),
		target:   target,
		logger:   logger.With("widget", "file", "path", path),
		Fallback: 5 * time.Second,
	}
}

// Run follows the file until ctx is done. The parent directory is watched
// rather than the file, so that editors replacing the file by rename and
// files created after start are both picked up.
func (f *FileTail) Run(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", f.path, err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("watch %s: %w", f.path, err)
	}

	f.refresh()

	var fallback <-chan time.Time
	if f.Fallback > 0 {
		t := time.NewTicker(f.Fallback)
		defer t.Stop()
		fallback = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != f.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				f.refresh()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			f.logger.Warn("watch error", "error", err)
		case <-fallback:
			f.refresh()
		}
	}
}

// refresh pushes the current last line when it changed. A missing file
// shows as empty.
func (f *FileTail) refresh() {
	line, err := LastLine(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		f.logger.Warn("read failed", "error", err)
		return
	}
	if line == f.last {
		return
	}
	f.last = line
	if err := f.target.SetText(line); err != nil {
		f.logger.Debug("set text failed", "error", err)
	}
}

// LastLine returns the last non-empty line of the file at path, without
// its line ending.
func LastLine(path string) (string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer fh.Close()

	info, err := fh.Stat()
	if err != nil {
		return "", err
	}
	offset := info.Size() - tailWindow
	if offset < 0 {
		offset = 0
	}
	buf := make([]byte, info.Size()-offset)
	if _, err := fh.ReadAt(buf, offset); err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}

	buf = bytes.TrimRight(buf, "\r\n \t")
	if i := bytes.LastIndexAny(buf, "\r\n"); i >= 0 {
		buf = buf[i+1:]
	}
	return string(buf), nil
}
