package profile

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// TravelEntry accumulates per-country listening time for a user. It backs
// the passport stamp view and is written once per second while audio plays,
// so the increment path has to be cheap.
type TravelEntry struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time `gorm:"index"`

	UserID  string `gorm:"uniqueIndex:idx_travel_user_country"`
	Country string `gorm:"uniqueIndex:idx_travel_user_country"`
	ISO     string
	Seconds int `gorm:"default:0"`
}

// AddTravelSeconds adds listening time to a user's log for one country,
// creating the entry on first visit.
func (s *Store) AddTravelSeconds(ctx context.Context, userID, country, iso string, seconds int) error {
	if seconds <= 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry TravelEntry
		err := tx.Where("user_id = ? AND country = ?", userID, country).First(&entry).Error
		if err == gorm.ErrRecordNotFound {
			entry = TravelEntry{
				UserID:  userID,
				Country: country,
				ISO:     iso,
				Seconds: seconds,
			}
			return tx.Create(&entry).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&entry).
			UpdateColumn("seconds", gorm.Expr("seconds + ?", seconds)).Error
	})
}

// TravelTotals returns a user's travel log ordered by listening time,
// longest first.
func (s *Store) TravelTotals(ctx context.Context, userID string) ([]TravelEntry, error) {
	var entries []TravelEntry
	result := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("seconds desc").
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}
	return entries, nil
}

// TravelCountryCount returns how many distinct countries appear in a user's
// travel log.
func (s *Store) TravelCountryCount(ctx context.Context, userID string) (int, error) {
	var count int64
	result := s.db.WithContext(ctx).Model(&TravelEntry{}).
		Where("user_id = ?", userID).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return int(count), nil
}
