package profile

import (
	"time"

	"gorm.io/gorm/clause"
)

// Marker is a badge unlock idempotency marker. The unique index over
// (user_id, badge_id) makes SetMarkerIfAbsent an atomic test-and-set, which
// is what guarantees exactly-once badge credit across sessions and restarts.
type Marker struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index"`

	UserID  string `gorm:"uniqueIndex:idx_marker_user_badge"`
	BadgeID string `gorm:"uniqueIndex:idx_marker_user_badge"`
}

// SetMarkerIfAbsent records that a badge has been credited to a user.
// It returns true if this call created the marker, false if it already
// existed.
func (s *Store) SetMarkerIfAbsent(userID, badgeID string) (bool, error) {
	marker := Marker{UserID: userID, BadgeID: badgeID}
	result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&marker)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// HasMarker reports whether a badge has already been credited to a user.
func (s *Store) HasMarker(userID, badgeID string) (bool, error) {
	var count int64
	result := s.db.Model(&Marker{}).
		Where("user_id = ? AND badge_id = ?", userID, badgeID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}
