package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alimgiray/reviewgate/internal/models"
	"github.com/alimgiray/reviewgate/internal/repositories"
)

// ErrInvalidSetting is returned when a setting value fails validation
var ErrInvalidSetting = errors.New("invalid setting")

type RepositorySettingService struct {
	settingRepo    *repositories.RepositorySettingRepository
	defaultMinimum int
}

func NewRepositorySettingService(settingRepo *repositories.RepositorySettingRepository, defaultMinimum int) *RepositorySettingService {
	if defaultMinimum < 1 {
		defaultMinimum = 1
	}
	return &RepositorySettingService{
		settingRepo:    settingRepo,
		defaultMinimum: defaultMinimum,
	}
}

// MinimumReviewers returns the repository's minimum_reviewers_required
// setting, or the configured default when it is not set
func (s *RepositorySettingService) MinimumReviewers(repository string) (int, error) {
	setting, err := s.settingRepo.Get(repository, models.SettingMinimumReviewersRequired)
	if errors.Is(err, sql.ErrNoRows) {
		return s.defaultMinimum, nil
	}
	if err != nil {
		return 0, err
	}

	minimum, err := strconv.Atoi(strings.TrimSpace(setting.Value))
	if err != nil {
		return 0, fmt.Errorf("%w: %s for %s is %q", ErrInvalidSetting, setting.Key, repository, setting.Value)
	}
	return minimum, nil
}

// GetSettings returns all settings of a repository keyed by name
func (s *RepositorySettingService) GetSettings(repository string) (map[string]string, error) {
	settings, err := s.settingRepo.GetByRepository(repository)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(settings))
	for _, setting := range settings {
		values[setting.Key] = setting.Value
	}
	return values, nil
}

// SetSetting validates and stores a setting value
func (s *RepositorySettingService) SetSetting(repository, key, value string) (*models.RepositorySetting, error) {
	if repository == "" || key == "" {
		return nil, fmt.Errorf("%w: repository and key are required", ErrInvalidSetting)
	}

	value = strings.TrimSpace(value)
	if key == models.SettingMinimumReviewersRequired {
		minimum, err := strconv.Atoi(value)
		if err != nil || minimum < 1 {
			return nil, fmt.Errorf("%w: %s must be a positive integer", ErrInvalidSetting, key)
		}
	}

	setting := &models.RepositorySetting{
		Repository: repository,
		Key:        key,
		Value:      value,
	}
	if err := s.settingRepo.Upsert(setting); err != nil {
		return nil, err
	}
	return setting, nil
}

func (s *RepositorySettingService) DeleteSetting(repository, key string) error {
	return s.settingRepo.Delete(repository, key)
}
