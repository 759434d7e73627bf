package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sensoryplay/portal-backend/internal/model"
	"github.com/sensoryplay/portal-backend/internal/repository"
)

// ErrSettingNotFound is returned for unknown setting keys.
var ErrSettingNotFound = errors.New("setting not found")

// SettingError rejects one key of a settings update.
type SettingError struct {
	Key    string
	Reason string
}

func (e *SettingError) Error() string {
	return fmt.Sprintf("setting %s: %s", e.Key, e.Reason)
}

// validateSetting checks a value against the rules of its key.
func validateSetting(key, value string) error {
	switch key {
	case model.SettingContactRecipient:
		addr, err := mail.ParseAddress(value)
		if err != nil || addr.Address != value {
			return &SettingError{Key: key, Reason: "must be a plain email address"}
		}
	case model.SettingSiteName:
		if strings.TrimSpace(value) == "" {
			return &SettingError{Key: key, Reason: "must not be blank"}
		}
	default:
		return &SettingError{Key: key, Reason: "unknown setting, expected one of " + strings.Join(model.SettingKeys, ", ")}
	}
	return nil
}

// publicSettingKeys are readable without signing in.
var publicSettingKeys = map[string]bool{
	model.SettingSiteName: true,
}

type SettingService struct {
	settings SettingStore
	log      zerolog.Logger
}

func NewSettingService(settings SettingStore, log zerolog.Logger) *SettingService {
	return &SettingService{
		settings: settings,
		log:      log.With().Str("component", "setting_service").Logger(),
	}
}

func (s *SettingService) GetAllSettings(ctx context.Context) (map[string]string, error) {
	settingsList, err := s.settings.GetAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get all settings")
		return nil, err
	}

	settingsMap := make(map[string]string, len(settingsList))
	for _, setting := range settingsList {
		settingsMap[setting.Key] = setting.Value
	}
	return settingsMap, nil
}

// GetPublicSettings returns the subset of settings safe for anonymous visitors.
func (s *SettingService) GetPublicSettings(ctx context.Context) (map[string]string, error) {
	all, err := s.GetAllSettings(ctx)
	if err != nil {
		return nil, err
	}
	public := make(map[string]string, len(publicSettingKeys))
	for k, v := range all {
		if publicSettingKeys[k] {
			public[k] = v
		}
	}
	return public, nil
}

// UpdateSettings validates every key before writing any of them.
func (s *SettingService) UpdateSettings(ctx context.Context, settingsMap map[string]string) error {
	for k, v := range settingsMap {
		if err := validateSetting(k, v); err != nil {
			return err
		}
	}
	if err := s.settings.UpsertMany(ctx, settingsMap); err != nil {
		s.log.Error().Err(err).Int("count", len(settingsMap)).Msg("failed to update settings")
		return err
	}
	return nil
}

func (s *SettingService) GetSettingByKey(ctx context.Context, key string) (string, error) {
	setting, err := s.settings.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrSettingNotFound
		}
		return "", err
	}
	return setting.Value, nil
}
