package service

import (
	"context"
	"errors"
	"strings"

	"filadash"
	"filadash/internal/repository"
)

const maxSettingValueLen = 4096

type SettingsService struct {
	settingsRepo repository.SettingsRepo
}

func NewSettingsService(settingsRepo repository.SettingsRepo) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo}
}

var (
	errEmptySettingKey   = errors.New("setting key must not be empty")
	errSettingValueLarge = errors.New("setting value too large")
)

func (s *SettingsService) Get(ctx context.Context, key string) (filadash.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return filadash.Setting{}, errEmptySettingKey
	}
	return s.settingsRepo.Get(ctx, key)
}

func (s *SettingsService) GetAll(ctx context.Context) ([]filadash.Setting, error) {
	return s.settingsRepo.GetAll(ctx)
}

func (s *SettingsService) Put(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errEmptySettingKey
	}
	if len(value) > maxSettingValueLen {
		return errSettingValueLarge
	}
	return s.settingsRepo.Put(ctx, key, value)
}
