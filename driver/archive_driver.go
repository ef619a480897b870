package driver

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"permanode/domain"
)

// ArchiveLog is an open part file of contiguous milestones. The file is
// renamed after every append so its name always states the range it holds.
type ArchiveLog struct {
	dir  string
	from uint32
	next uint32
	size int64
	file *os.File
}

// CreateArchiveLog starts a new part file whose first milestone is from.
func CreateArchiveLog(dir string, from uint32) (*ArchiveLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create logs dir: %w", err)
	}
	path := filepath.Join(dir, domain.ArchiveName(from, from, domain.ArchivePartExt))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create archive part: %w", err)
	}
	return &ArchiveLog{dir: dir, from: from, next: from, file: f}, nil
}

func (l *ArchiveLog) From() uint32 { return l.from }

// Next is the only milestone index Append accepts.
func (l *ArchiveLog) Next() uint32 { return l.next }

func (l *ArchiveLog) Size() int64 { return l.size }

func (l *ArchiveLog) Len() uint32 { return l.next - l.from }

// Path is the current part file path.
func (l *ArchiveLog) Path() string { return l.partPath() }

func (l *ArchiveLog) partPath() string {
	return filepath.Join(l.dir, domain.ArchiveName(l.from, l.next, domain.ArchivePartExt))
}

// Append writes data as one JSON line and syncs it to disk.
func (l *ArchiveLog) Append(data *domain.MilestoneData) error {
	if data.MilestoneIndex != l.next {
		return fmt.Errorf("archive %s: got milestone %d, want %d", l.partPath(), data.MilestoneIndex, l.next)
	}
	line, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode milestone %d: %w", data.MilestoneIndex, err)
	}
	line = append(line, '\n')

	if _, err := l.file.Write(line); err != nil {
		return fmt.Errorf("write milestone %d: %w", data.MilestoneIndex, err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("sync milestone %d: %w", data.MilestoneIndex, err)
	}

	old := l.partPath()
	l.next++
	l.size += int64(len(line))
	if err := os.Rename(old, l.partPath()); err != nil {
		return fmt.Errorf("rename archive part: %w", err)
	}
	return nil
}

// Finish closes the part file and compresses it. It returns the archive
// path, or "" when nothing was appended.
func (l *ArchiveLog) Finish() (string, error) {
	part := l.partPath()
	if err := l.file.Close(); err != nil {
		return "", fmt.Errorf("close archive part: %w", err)
	}
	if l.Len() == 0 {
		return "", os.Remove(part)
	}
	return compressPart(part)
}

func compressPart(part string) (string, error) {
	r, err := domain.ParseArchiveName(part)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(filepath.Dir(part), domain.ArchiveName(r.Start, r.End, domain.ArchiveLogExt))
	tmp := dst + ".tmp"

	in, err := os.Open(part)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	enc, err := zstd.NewWriter(out)
	if err != nil {
		out.Close()
		return "", err
	}
	if _, err := io.Copy(enc, in); err != nil {
		enc.Close()
		out.Close()
		return "", fmt.Errorf("compress %s: %w", part, err)
	}
	if err := enc.Close(); err != nil {
		out.Close()
		return "", fmt.Errorf("compress %s: %w", part, err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, dst); err != nil {
		return "", err
	}
	return dst, os.Remove(part)
}

// ArchiveFiles reads finished archives and recovers part files left by a
// previous run.
type ArchiveFiles struct{}

func NewArchiveFiles() *ArchiveFiles { return &ArchiveFiles{} }

// ListArchives returns the .log.zst files in dir ordered by first milestone.
func (ArchiveFiles) ListArchives(dir string) ([]string, error) {
	return listByRange(dir, domain.ArchiveLogExt)
}

// RecoverParts compresses every part file found in dir and returns the
// resulting ranges. Empty parts are removed.
func (ArchiveFiles) RecoverParts(dir string) ([]domain.Range, error) {
	parts, err := listByRange(dir, domain.ArchivePartExt)
	if err != nil {
		return nil, err
	}
	var recovered []domain.Range
	var errs []error
	for _, part := range parts {
		r, _ := domain.ParseArchiveName(part)
		if r.Len() == 0 {
			errs = append(errs, os.Remove(part))
			continue
		}
		if _, err := compressPart(part); err != nil {
			errs = append(errs, err)
			continue
		}
		recovered = append(recovered, r)
	}
	return recovered, errors.Join(errs...)
}

func listByRange(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	type named struct {
		path string
		r    domain.Range
	}
	var files []named
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		r, err := domain.ParseArchiveName(e.Name())
		if err != nil {
			continue
		}
		files = append(files, named{path: filepath.Join(dir, e.Name()), r: r})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].r.Start < files[j].r.Start })

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}

// ReadArchive decodes every milestone line of a .log.zst archive in order.
func (ArchiveFiles) ReadArchive(ctx context.Context, path string, fn func(*domain.MilestoneData) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", path, err)
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 1<<20)
	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		b, err := br.ReadBytes('\n')
		if len(b) > 0 {
			var data domain.MilestoneData
			if jerr := json.Unmarshal(b, &data); jerr != nil {
				return fmt.Errorf("archive %s line %d: %w", path, line, jerr)
			}
			if ferr := fn(&data); ferr != nil {
				return ferr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read archive %s: %w", path, err)
		}
	}
}
