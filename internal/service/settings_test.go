package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"filadash"
)

type fakeSettingsRepo struct {
	store map[string]string
}

func (f *fakeSettingsRepo) Get(_ context.Context, key string) (filadash.Setting, error) {
	v, ok := f.store[key]
	if !ok {
		return filadash.Setting{}, errors.New("not found")
	}
	return filadash.Setting{Key: key, Value: v}, nil
}

func (f *fakeSettingsRepo) GetAll(_ context.Context) ([]filadash.Setting, error) {
	out := make([]filadash.Setting, 0, len(f.store))
	for k, v := range f.store {
		out = append(out, filadash.Setting{Key: k, Value: v})
	}
	return out, nil
}

func (f *fakeSettingsRepo) Put(_ context.Context, key, value string) error {
	f.store[key] = value
	return nil
}

func TestSettingsService_PutValidation(t *testing.T) {
	repo := &fakeSettingsRepo{store: map[string]string{}}
	svc := NewSettingsService(repo)
	ctx := context.Background()

	if err := svc.Put(ctx, "  ", "x"); !errors.Is(err, errEmptySettingKey) {
		t.Fatalf("expected errEmptySettingKey, got %v", err)
	}
	big := strings.Repeat("a", maxSettingValueLen+1)
	if err := svc.Put(ctx, "theme", big); !errors.Is(err, errSettingValueLarge) {
		t.Fatalf("expected errSettingValueLarge, got %v", err)
	}

	if err := svc.Put(ctx, " theme ", "dark"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := svc.Get(ctx, "theme")
	if err != nil || got.Value != "dark" {
		t.Fatalf("Get: %v %#v (keys must be trimmed on write)", err, got)
	}
}
