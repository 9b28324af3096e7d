package service

import (
	"context"
	"errors"
	"strings"

	"filadash"
	"filadash/internal/repository"
)

type ArchiveService struct {
	archiveRepo repository.ArchiveRepo
}

func NewArchiveService(archiveRepo repository.ArchiveRepo) *ArchiveService {
	return &ArchiveService{archiveRepo: archiveRepo}
}

var (
	errMissingFileName = errors.New("file_name is required")
	errInvalidStatus   = errors.New("invalid status: must be SUCCESS, FAILED, or CANCELED")
)

func validStatus(s string) bool {
	switch s {
	case filadash.StatusSuccess, filadash.StatusFailed, filadash.StatusCanceled:
		return true
	default:
		return false
	}
}

// Create validates and stores a new archive record.
func (s *ArchiveService) Create(ctx context.Context, a filadash.PrintArchive) (int, error) {
	a.FileName = strings.TrimSpace(a.FileName)
	if a.FileName == "" {
		return 0, errMissingFileName
	}
	a.Status = strings.ToUpper(strings.TrimSpace(a.Status))
	if !validStatus(a.Status) {
		return 0, errInvalidStatus
	}
	if a.DurationSec < 0 {
		a.DurationSec = 0
	}
	if a.FilamentGrams < 0 {
		a.FilamentGrams = 0
	}
	return s.archiveRepo.Insert(ctx, a)
}

func (s *ArchiveService) Get(ctx context.Context, id int) (filadash.PrintArchive, error) {
	return s.archiveRepo.GetByID(ctx, id)
}

func (s *ArchiveService) List(ctx context.Context) ([]filadash.PrintArchive, error) {
	return s.archiveRepo.List(ctx)
}

func (s *ArchiveService) Delete(ctx context.Context, id int) error {
	return s.archiveRepo.Delete(ctx, id)
}

func (s *ArchiveService) Stats(ctx context.Context) (filadash.PrintStats, error) {
	return s.archiveRepo.Stats(ctx)
}
