package service

import (
	"context"
	"errors"
	"testing"

	"filadash"
)

type fakeArchiveRepo struct {
	inserted []filadash.PrintArchive
	nextID   int
	stats    filadash.PrintStats
}

func (f *fakeArchiveRepo) Insert(_ context.Context, a filadash.PrintArchive) (int, error) {
	f.nextID++
	f.inserted = append(f.inserted, a)
	return f.nextID, nil
}

func (f *fakeArchiveRepo) GetByID(_ context.Context, id int) (filadash.PrintArchive, error) {
	for _, a := range f.inserted {
		if a.ID == id {
			return a, nil
		}
	}
	return filadash.PrintArchive{}, errors.New("not found")
}

func (f *fakeArchiveRepo) List(_ context.Context) ([]filadash.PrintArchive, error) {
	return f.inserted, nil
}

func (f *fakeArchiveRepo) Delete(_ context.Context, id int) error { return nil }

func (f *fakeArchiveRepo) Stats(_ context.Context) (filadash.PrintStats, error) {
	return f.stats, nil
}

func TestArchiveService_CreateValidation(t *testing.T) {
	repo := &fakeArchiveRepo{}
	svc := NewArchiveService(repo)
	ctx := context.Background()

	cases := []struct {
		name    string
		in      filadash.PrintArchive
		wantErr error
	}{
		{"missing file name", filadash.PrintArchive{Status: "SUCCESS"}, errMissingFileName},
		{"blank file name", filadash.PrintArchive{FileName: "   ", Status: "SUCCESS"}, errMissingFileName},
		{"bad status", filadash.PrintArchive{FileName: "benchy.3mf", Status: "DONE"}, errInvalidStatus},
		{"ok", filadash.PrintArchive{FileName: "benchy.3mf", Status: "success"}, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.Create(ctx, c.in)
			if !errors.Is(err, c.wantErr) {
				t.Fatalf("Create: got %v, want %v", err, c.wantErr)
			}
		})
	}

	// Status is normalized, negative counters clamped.
	id, err := svc.Create(ctx, filadash.PrintArchive{
		FileName:      " calicat.3mf ",
		Status:        " failed ",
		DurationSec:   -5,
		FilamentGrams: -1,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got := repo.inserted[len(repo.inserted)-1]
	if got.FileName != "calicat.3mf" || got.Status != filadash.StatusFailed {
		t.Fatalf("normalization failed: %#v", got)
	}
	if got.DurationSec != 0 || got.FilamentGrams != 0 {
		t.Fatalf("negative counters must be clamped: %#v", got)
	}
	if id == 0 {
		t.Fatalf("expected an assigned id")
	}
}

func TestArchiveService_StatsPassthrough(t *testing.T) {
	repo := &fakeArchiveRepo{stats: filadash.PrintStats{
		TotalPrints: 10, Succeeded: 8, Failed: 2, SuccessRate: 0.8,
	}}
	svc := NewArchiveService(repo)

	got, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if got.SuccessRate != 0.8 || got.TotalPrints != 10 {
		t.Fatalf("unexpected stats: %#v", got)
	}
}
