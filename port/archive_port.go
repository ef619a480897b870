package port

//go:generate go run go.uber.org/mock/mockgen -source=archive_port.go -destination=../mocks/mock_archive_port.go -package=mocks

import (
	"context"

	"permanode/domain"
)

// ArchiveSource streams milestones out of archive files.
type ArchiveSource interface {
	// ListArchives returns the finished archive files in dir, lowest range first.
	ListArchives(dir string) ([]string, error)
	ReadArchive(ctx context.Context, path string, fn func(*domain.MilestoneData) error) error
}
