package repositories

import (
	"database/sql"
	"time"

	"github.com/alimgiray/reviewgate/internal/models"
)

type RepositorySettingRepository struct {
	db *sql.DB
}

func NewRepositorySettingRepository(db *sql.DB) *RepositorySettingRepository {
	return &RepositorySettingRepository{db: db}
}

// Get returns a single setting or sql.ErrNoRows when it is not set
func (r *RepositorySettingRepository) Get(repository, key string) (*models.RepositorySetting, error) {
	query := `
		SELECT repository, key, value, updated_at
		FROM repository_settings
		WHERE repository = ? AND key = ?
	`

	setting := &models.RepositorySetting{}
	err := r.db.QueryRow(query, repository, key).Scan(
		&setting.Repository,
		&setting.Key,
		&setting.Value,
		&setting.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return setting, nil
}

func (r *RepositorySettingRepository) GetByRepository(repository string) ([]*models.RepositorySetting, error) {
	query := `
		SELECT repository, key, value, updated_at
		FROM repository_settings
		WHERE repository = ?
		ORDER BY key
	`

	rows, err := r.db.Query(query, repository)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []*models.RepositorySetting
	for rows.Next() {
		setting := &models.RepositorySetting{}
		if err := rows.Scan(&setting.Repository, &setting.Key, &setting.Value, &setting.UpdatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, setting)
	}

	return settings, rows.Err()
}

// Upsert creates or replaces a setting value
func (r *RepositorySettingRepository) Upsert(setting *models.RepositorySetting) error {
	setting.UpdatedAt = time.Now().UTC()

	query := `
		INSERT INTO repository_settings (repository, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(repository, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query, setting.Repository, setting.Key, setting.Value, setting.UpdatedAt)
	return err
}

func (r *RepositorySettingRepository) Delete(repository, key string) error {
	result, err := r.db.Exec(`DELETE FROM repository_settings WHERE repository = ? AND key = ?`, repository, key)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
