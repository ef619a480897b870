package domain

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Archive file extensions. A part file is still being written; a log file
// is finished and zstd compressed.
const (
	ArchivePartExt = ".part"
	ArchiveLogExt  = ".log.zst"
)

// ArchiveName returns the base name for milestones [from, to).
func ArchiveName(from, to uint32, ext string) string {
	return fmt.Sprintf("%dto%d%s", from, to, ext)
}

// ParseArchiveName parses "<from>to<to>.log.zst" or "<from>to<to>.part".
func ParseArchiveName(name string) (Range, error) {
	base := filepath.Base(name)
	switch {
	case strings.HasSuffix(base, ArchiveLogExt):
		base = strings.TrimSuffix(base, ArchiveLogExt)
	case strings.HasSuffix(base, ArchivePartExt):
		base = strings.TrimSuffix(base, ArchivePartExt)
	default:
		return Range{}, fmt.Errorf("not an archive file: %s", name)
	}
	fromStr, toStr, ok := strings.Cut(base, "to")
	if !ok {
		return Range{}, fmt.Errorf("not an archive file: %s", name)
	}
	from, err := strconv.ParseUint(fromStr, 10, 32)
	if err != nil {
		return Range{}, fmt.Errorf("archive %s: %w", name, err)
	}
	to, err := strconv.ParseUint(toStr, 10, 32)
	if err != nil {
		return Range{}, fmt.Errorf("archive %s: %w", name, err)
	}
	if to < from {
		return Range{}, fmt.Errorf("archive %s: range is reversed", name)
	}
	return Range{Start: uint32(from), End: uint32(to)}, nil
}
