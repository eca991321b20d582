package auditlog

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"
)

const PageSize = 20

var (
	fileNamePattern = regexp.MustCompile(`^blocked_(\d{4}-\d{2}-\d{2})\.log$`)

	ErrInvalidFileName = errors.New("invalid audit log file name")
	ErrFileNotFound    = errors.New("audit log file not found")
)

var timeNow = time.Now

func ValidFileName(name string) bool {
	return fileNamePattern.MatchString(name)
}

// Name of the partition for the UTC calendar day containing t.
func FileNameFor(t time.Time) string {
	return "blocked_" + t.UTC().Format("2006-01-02") + ".log"
}

type Logger struct {
	Dir string

	mu sync.Mutex
}

func NewLogger(dir string) *Logger {
	return &Logger{Dir: dir}
}

// Appends one record to today's partition as a single JSON line. Holds an exclusive file lock across the write so concurrent writers (including other processes) never interleave.
func (l *Logger) Append(ctx context.Context, rec Record) error {
	line, err := json.Marshal(rec.bounded())
	if err != nil {
		return err
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return fmt.Errorf("creating audit log directory: %w", err)
	}
	path := filepath.Join(l.Dir, FileNameFor(timeNow()))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	if err := lockFile(f); err != nil {
		return fmt.Errorf("locking audit log: %w", err)
	}
	defer unlockFile(f)

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("writing audit log: %w", err)
	}
	return nil
}

type FileInfo struct {
	FileName string `json:"filename"`
	Date     string `json:"date"`
	Size     int64  `json:"size"`
	Count    int    `json:"count"`
}

// Lists partitions, newest date first. A missing directory is an empty list.
func (l *Logger) ListFiles(ctx context.Context) ([]FileInfo, error) {
	entries, err := os.ReadDir(l.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []FileInfo{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := []FileInfo{}
	for _, ent := range entries {
		m := fileNamePattern.FindStringSubmatch(ent.Name())
		if m == nil || ent.IsDir() {
			continue
		}
		info, err := ent.Info()
		if err != nil {
			return nil, err
		}
		count, err := countLines(filepath.Join(l.Dir, ent.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, FileInfo{
			FileName: ent.Name(),
			Date:     m[1],
			Size:     info.Size(),
			Count:    count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})
	return out, nil
}

// Lines longer than this are skipped by readers.
const maxLineSize = 1024 * 1024

// Calls fn with each non-blank line of r. Over-long lines are discarded rather than failing the whole read. The slice passed to fn is only valid until fn returns.
func eachLine(r io.Reader, fn func(line []byte)) error {
	br := bufio.NewReaderSize(r, maxLineSize)
	for {
		line, isPrefix, err := br.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if isPrefix {
			for isPrefix {
				_, isPrefix, err = br.ReadLine()
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return err
				}
			}
			continue
		}
		if line = bytes.TrimSpace(line); len(line) > 0 {
			fn(line)
		}
	}
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	count := 0
	err = eachLine(f, func([]byte) {
		count++
	})
	return count, err
}

type Page struct {
	File         string   `json:"file"`
	Records      []Record `json:"logs"`
	Current      int      `json:"current"`
	TotalPages   int      `json:"total"`
	PerPage      int      `json:"perPage"`
	TotalRecords int      `json:"totalRecords"`
}

// Returns one page (1-indexed, PageSize records) of a partition, newest record first. Lines that don't parse are skipped.
func (l *Logger) View(ctx context.Context, name string, page int) (*Page, error) {
	path, err := l.path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var recs []Record
	err = eachLine(f, func(line []byte) {
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return
		}
		recs = append(recs, rec)
	})
	if err != nil {
		return nil, err
	}

	// newest first
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}

	if page < 1 {
		page = 1
	}
	total := len(recs)
	out := &Page{
		File:         name,
		Records:      []Record{},
		Current:      page,
		TotalPages:   (total + PageSize - 1) / PageSize,
		PerPage:      PageSize,
		TotalRecords: total,
	}
	start := (page - 1) * PageSize
	if start < total {
		end := min(start+PageSize, total)
		out.Records = recs[start:end]
	}
	return out, nil
}

func (l *Logger) path(name string) (string, error) {
	if !ValidFileName(name) {
		return "", ErrInvalidFileName
	}
	return filepath.Join(l.Dir, name), nil
}

func (l *Logger) Delete(ctx context.Context, name string) error {
	path, err := l.path(name)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrFileNotFound
	}
	return err
}

// Deletes each named partition, counting successes and failures. Invalid names count as failures.
func (l *Logger) DeleteMany(ctx context.Context, names []string) (deleted, failed int) {
	for _, name := range names {
		if err := l.Delete(ctx, name); err != nil {
			failed++
			continue
		}
		deleted++
	}
	return deleted, failed
}

// Deletes every partition dated strictly before the given UTC day; a zero time deletes all partitions.
func (l *Logger) Purge(ctx context.Context, before time.Time) (deleted, failed int, err error) {
	files, err := l.ListFiles(ctx)
	if err != nil {
		return 0, 0, err
	}
	cutoff := ""
	if !before.IsZero() {
		cutoff = before.UTC().Format("2006-01-02")
	}
	var names []string
	for _, f := range files {
		if cutoff == "" || f.Date < cutoff {
			names = append(names, f.FileName)
		}
	}
	deleted, failed = l.DeleteMany(ctx, names)
	return deleted, failed, nil
}
