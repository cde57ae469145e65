package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/domain/navigation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// defaultProfileID keys the single profile row. The bridge serves one host.
const defaultProfileID = "default"

// ProfileModel is the GORM model for the navigation_profiles table.
type ProfileModel struct {
	ID                string          `gorm:"primaryKey;size:32"`
	CoreOptions       json.RawMessage `gorm:"type:jsonb"`
	NavigationOptions json.RawMessage `gorm:"type:jsonb"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ProfileModel) TableName() string {
	return "navigation_profiles"
}

// GormProfileRepository is the GORM-based implementation of ProfileRepository.
type GormProfileRepository struct {
	db *gorm.DB
}

// NewGormProfileRepository creates a new GormProfileRepository.
func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// Load retrieves the stored profile. Halves that were never saved are
// filled with defaults.
func (r *GormProfileRepository) Load(ctx context.Context) (*navigation.Profile, error) {
	var model ProfileModel
	if err := r.db.WithContext(ctx).Where("id = ?", defaultProfileID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, navigation.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load navigation profile: %w", err)
	}
	return toDomainProfile(&model)
}

// SaveCoreOptions upserts the core options of the profile.
func (r *GormProfileRepository) SaveCoreOptions(ctx context.Context, options navigation.CoreOptions) error {
	data, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("failed to marshal core options: %w", err)
	}
	return r.upsert(ctx, "core_options", &ProfileModel{CoreOptions: data})
}

// SaveNavigationOptions upserts the display options of the profile.
func (r *GormProfileRepository) SaveNavigationOptions(ctx context.Context, options navigation.NavigationOptions) error {
	data, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("failed to marshal navigation options: %w", err)
	}
	return r.upsert(ctx, "navigation_options", &ProfileModel{NavigationOptions: data})
}

func (r *GormProfileRepository) upsert(ctx context.Context, column string, model *ProfileModel) error {
	now := time.Now().UTC()
	model.ID = defaultProfileID
	model.CreatedAt = now
	model.UpdatedAt = now

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{column, "updated_at"}),
		}).
		Create(model).Error; err != nil {
		return fmt.Errorf("failed to save navigation profile: %w", err)
	}
	return nil
}

// --- Conversion Helpers ---

func toDomainProfile(m *ProfileModel) (*navigation.Profile, error) {
	profile := &navigation.Profile{
		CoreOptions:       navigation.DefaultCoreOptions(),
		NavigationOptions: navigation.DefaultNavigationOptions(),
		UpdatedAt:         m.UpdatedAt,
	}

	if isSet(m.CoreOptions) {
		var core navigation.CoreOptions
		if err := json.Unmarshal(m.CoreOptions, &core); err != nil {
			return nil, fmt.Errorf("failed to unmarshal core options: %w", err)
		}
		profile.CoreOptions = core
	}
	if isSet(m.NavigationOptions) {
		var nav navigation.NavigationOptions
		if err := json.Unmarshal(m.NavigationOptions, &nav); err != nil {
			return nil, fmt.Errorf("failed to unmarshal navigation options: %w", err)
		}
		profile.NavigationOptions = nav
	}
	return profile, nil
}

func isSet(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
