package service

import (
	"encoding/json"

	"go.uber.org/zap"

	"projektchat/internal/repository"
)

// completeConfigKey stores the full settings snapshot saved by the client.
const completeConfigKey = "complete_config"

// SettingsService handles persisted application settings and user preferences
type SettingsService struct {
	settingsRepo *repository.SettingsRepository
	logger       *zap.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsRepo *repository.SettingsRepository, logger *zap.Logger) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo, logger: logger}
}

// All returns every stored setting as raw JSON values
func (s *SettingsService) All() (map[string]json.RawMessage, error) {
	return s.settingsRepo.AllSettings()
}

// Set stores one setting
func (s *SettingsService) Set(key string, value any, description string) error {
	if err := s.settingsRepo.SetSetting(key, value, description); err != nil {
		return err
	}
	s.logger.Debug("setting stored", zap.String("key", key))
	return nil
}

// Get loads one setting into out. Returns false when unset.
func (s *SettingsService) Get(key string, out any) (bool, error) {
	return s.settingsRepo.GetSetting(key, out)
}

// SaveCompleteConfig persists a full settings snapshot under one key
func (s *SettingsService) SaveCompleteConfig(cfg map[string]any) error {
	return s.Set(completeConfigKey, cfg, "Vollständige Anwendungskonfiguration")
}

// CompleteConfig loads the persisted settings snapshot, nil when absent
func (s *SettingsService) CompleteConfig() (map[string]any, error) {
	var cfg map[string]any
	ok, err := s.settingsRepo.GetSetting(completeConfigKey, &cfg)
	if err != nil || !ok {
		return nil, err
	}
	return cfg, nil
}

// SetPreference stores a user preference
func (s *SettingsService) SetPreference(key string, value any) error {
	return s.settingsRepo.SetPreference(key, value)
}

// GetPreference loads a user preference into out. Returns false when unset.
func (s *SettingsService) GetPreference(key string, out any) (bool, error) {
	return s.settingsRepo.GetPreference(key, out)
}
