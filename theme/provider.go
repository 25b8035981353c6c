package theme

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Static is a fixed set of custom property values.
type Static map[string]string

// Color returns the trimmed value for name, or "" if absent.
func (s Static) Color(name string) string {
	return strings.TrimSpace(s[name])
}

// FileProvider serves colors from a stylesheet file and reloads it when the
// file's modification time changes.
//
// If a reload fails, the last good stylesheet keeps being served and the
// failure is logged. FileProvider is safe for concurrent use.
type FileProvider struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	sheet   *Stylesheet
	modTime time.Time
	size    int64
}

// NewFileProvider loads the stylesheet at path. The initial load must succeed.
func NewFileProvider(path string, logger *slog.Logger) (*FileProvider, error) {
	if logger == nil {
		logger = slog.Default()
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat stylesheet: %w", err)
	}
	sheet, err := LoadStylesheet(path)
	if err != nil {
		return nil, err
	}

	return &FileProvider{
		path:    path,
		logger:  logger,
		sheet:   sheet,
		modTime: info.ModTime(),
		size:    info.Size(),
	}, nil
}

// Color implements chart.ThemeProvider.
func (f *FileProvider) Color(name string) string {
	f.refresh()

	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.sheet.Color(name)
}

// Path returns the stylesheet path.
func (f *FileProvider) Path() string {
	return f.path
}

func (f *FileProvider) refresh() {
	info, err := os.Stat(f.path)
	if err != nil {
		f.logger.Warn("stylesheet unavailable, keeping previous theme", "path", f.path, "error", err)
		return
	}

	f.mu.RLock()
	unchanged := info.ModTime().Equal(f.modTime) && info.Size() == f.size
	f.mu.RUnlock()
	if unchanged {
		return
	}

	sheet, err := LoadStylesheet(f.path)

	f.mu.Lock()
	// record the attempt either way so a broken file is not re-parsed on every lookup
	f.modTime = info.ModTime()
	f.size = info.Size()
	if err == nil {
		f.sheet = sheet
	}
	f.mu.Unlock()

	if err != nil {
		f.logger.Warn("stylesheet reload failed, keeping previous theme", "path", f.path, "error", err)
		return
	}

	f.logger.Debug("stylesheet reloaded", "path", f.path)
}
