package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const logFilePrefix = "druglabel-"

var numberedLogFile = regexp.MustCompile(`^druglabel-\d{4}-W\d{2}_(\d{2})\.log$`)

// RotatingFile is an io.Writer that writes to one log file per ISO week and rolls
// over to a numbered file when the size limit is reached.
type RotatingFile struct {
	dir         string
	retention   time.Duration
	maxFileSize int64

	mu   sync.Mutex
	file *os.File
	week string
	size int64

	cancel      context.CancelFunc
	cleanupDone chan struct{}
}

// OpenRotatingFile creates dir if needed, opens the file for the current week and
// starts a daily cleanup of files older than retentionWeeks.
func OpenRotatingFile(dir string, retentionWeeks int, maxFileSize int64) (*RotatingFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	rf := &RotatingFile{
		dir:         dir,
		retention:   time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxFileSize: maxFileSize,
		cancel:      cancel,
		cleanupDone: make(chan struct{}),
	}

	rf.mu.Lock()
	err := rf.rotate(weekKey(time.Now()), false)
	rf.mu.Unlock()
	if err != nil {
		cancel()
		return nil, err
	}

	go rf.cleanupLoop(ctx)
	return rf, nil
}

// weekKey returns the ISO week in YYYY-Www format
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Write implements io.Writer.
func (rf *RotatingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	week := weekKey(time.Now())
	switch {
	case week != rf.week:
		if err := rf.rotate(week, false); err != nil {
			return 0, err
		}
	case rf.maxFileSize > 0 && rf.size+int64(len(p)) > rf.maxFileSize:
		if err := rf.rotate(week, true); err != nil {
			return 0, err
		}
	}

	if rf.file == nil {
		return 0, fmt.Errorf("no log file available")
	}

	n, err := rf.file.Write(p)
	rf.size += int64(n)
	return n, err
}

// rotate switches to the file for week. Caller must hold mu.
func (rf *RotatingFile) rotate(week string, full bool) error {
	if rf.file != nil {
		_ = rf.file.Close()
		rf.file = nil
	}

	name := rf.pickFile(week, full)
	path := filepath.Join(rf.dir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	rf.file = file
	rf.week = week
	rf.size = 0
	if info, err := file.Stat(); err == nil {
		rf.size = info.Size()
	}
	return nil
}

// pickFile chooses the file to append to: the plain weekly file while it has room,
// then the highest numbered file while it has room, then the next number.
func (rf *RotatingFile) pickFile(week string, full bool) string {
	base := logFilePrefix + week + ".log"
	if !full && rf.hasRoom(filepath.Join(rf.dir, base)) {
		return base
	}

	highest := 0
	matches, _ := filepath.Glob(filepath.Join(rf.dir, logFilePrefix+week+"_??.log"))
	for _, match := range matches {
		m := numberedLogFile.FindStringSubmatch(filepath.Base(match))
		if len(m) < 2 {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > highest {
			highest = n
		}
	}

	if highest > 0 && !full {
		last := fmt.Sprintf("%s%s_%02d.log", logFilePrefix, week, highest)
		if rf.hasRoom(filepath.Join(rf.dir, last)) {
			return last
		}
	}

	return fmt.Sprintf("%s%s_%02d.log", logFilePrefix, week, highest+1)
}

func (rf *RotatingFile) hasRoom(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return true
	}
	return rf.maxFileSize <= 0 || info.Size() < rf.maxFileSize
}

func (rf *RotatingFile) cleanupLoop(ctx context.Context) {
	defer close(rf.cleanupDone)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := rf.cleanupOldLogs(); err != nil {
				Warn("Failed to clean up old log files", "error", err)
			}
		}
	}
}

// cleanupOldLogs removes log files whose modification time is past retention.
func (rf *RotatingFile) cleanupOldLogs() (int, error) {
	entries, err := os.ReadDir(rf.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := time.Now().Add(-rf.retention)
	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, logFilePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if os.Remove(filepath.Join(rf.dir, name)) == nil {
			removed++
		}
	}
	return removed, nil
}

// Close stops the cleanup goroutine and closes the current file.
func (rf *RotatingFile) Close() error {
	rf.cancel()
	select {
	case <-rf.cleanupDone:
	case <-time.After(time.Second):
	}

	rf.mu.Lock()
	defer rf.mu.Unlock()
	if rf.file == nil {
		return nil
	}
	err := rf.file.Close()
	rf.file = nil
	return err
}
