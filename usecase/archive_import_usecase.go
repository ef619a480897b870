package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"permanode/domain"
	"permanode/port"
)

// ImportResult summarises an archive import.
type ImportResult struct {
	Files      int `json:"files"`
	Milestones int `json:"milestones"`
	Messages   int `json:"messages"`
}

// ArchiveImportUsecase replays archive files into storage.
type ArchiveImportUsecase struct {
	source port.ArchiveSource
	store  port.KeyspaceStore
}

// NewArchiveImportUsecase creates a new ArchiveImportUsecase.
func NewArchiveImportUsecase(source port.ArchiveSource, store port.KeyspaceStore) *ArchiveImportUsecase {
	return &ArchiveImportUsecase{source: source, store: store}
}

// Import writes every milestone of dir within r into storage and marks it
// synced and logged. progress, when set, is called after each milestone.
func (u *ArchiveImportUsecase) Import(ctx context.Context, dir string, r domain.SyncRange, progress func(index uint32)) (*ImportResult, error) {
	files, err := u.source.ListArchives(dir)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for _, path := range files {
		fileRange, err := domain.ParseArchiveName(path)
		if err != nil {
			continue
		}
		if fileRange.End <= r.From || fileRange.Start >= r.To {
			continue
		}
		result.Files++

		err = u.source.ReadArchive(ctx, path, func(data *domain.MilestoneData) error {
			if data.MilestoneIndex < r.From || data.MilestoneIndex >= r.To {
				return nil
			}
			if err := u.importMilestone(ctx, data); err != nil {
				return err
			}
			result.Milestones++
			result.Messages += len(data.Messages)
			if progress != nil {
				progress(data.MilestoneIndex)
			}
			return nil
		})
		if err != nil {
			return result, err
		}
		slog.InfoContext(ctx, "archive imported", "path", path, "range", fileRange.String())
	}
	return result, nil
}

func (u *ArchiveImportUsecase) importMilestone(ctx context.Context, data *domain.MilestoneData) error {
	for _, archived := range data.Messages {
		full, err := domain.NewFullMessage(archived.Raw, archived.Metadata)
		if err != nil {
			return fmt.Errorf("milestone %d: %w", data.MilestoneIndex, err)
		}
		if full.MessageID != archived.MessageID {
			return fmt.Errorf("milestone %d: archived message %s hashes to %s", data.MilestoneIndex, archived.MessageID, full.MessageID)
		}
		msg, err := full.Message()
		if err != nil {
			return err
		}
		if err := u.store.InsertMessage(ctx, full.MessageID, msg, full.Raw); err != nil {
			return err
		}
		if full.Metadata != nil {
			if err := u.store.InsertMetadata(ctx, full.Metadata); err != nil {
				return err
			}
		}
	}
	if data.Milestone != nil {
		if err := u.store.InsertMilestone(ctx, data.Milestone); err != nil {
			return err
		}
	}
	if err := u.store.MarkSynced(ctx, data.MilestoneIndex); err != nil {
		return err
	}
	return u.store.MarkLogged(ctx, data.MilestoneIndex)
}
