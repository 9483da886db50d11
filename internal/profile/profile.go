package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Record is the per-user profile document. Counters are written with atomic
// increments; the set-valued fields are stored as JSON arrays and only ever
// grow via append-if-absent.
type Record struct {
	UserID    string    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time `gorm:"index"`

	XP    int `gorm:"default:0"`
	Level int `gorm:"default:1"`

	TotalMinutes int    `gorm:"default:0"`
	TriviaWins   int    `gorm:"default:0"`
	Countries    string `gorm:"type:text"` // JSON array of ISO country codes
	Stations     string `gorm:"type:text"` // JSON array of station ids
	Badges       string `gorm:"type:text"` // JSON array of badge ids
}

func (r *Record) CountryList() []string { return decodeList(r.Countries) }
func (r *Record) StationList() []string { return decodeList(r.Stations) }
func (r *Record) BadgeList() []string   { return decodeList(r.Badges) }

// Update accumulates not-yet-persisted profile mutations. Numeric fields are
// deltas applied as server-side increments; the Add* slices are appended to
// the corresponding set fields if absent. Level is a merge-set (0 = unchanged).
type Update struct {
	XPDelta         int
	MinutesDelta    int
	TriviaWinsDelta int
	Level           int

	AddCountries []string
	AddStations  []string
	AddBadges    []string
}

// Empty reports whether the update carries no mutations at all.
func (u Update) Empty() bool {
	return u.XPDelta == 0 && u.MinutesDelta == 0 && u.TriviaWinsDelta == 0 &&
		u.Level == 0 && len(u.AddCountries) == 0 && len(u.AddStations) == 0 &&
		len(u.AddBadges) == 0
}

// Store persists profiles, badge unlock markers and the travel log in a
// single sqlite database.
type Store struct {
	db *gorm.DB
}

func NewStore(dbFilePath string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dbFilePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening profile database: %w", err)
	}

	if err := db.AutoMigrate(&Record{}, &Marker{}, &TravelEntry{}); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection. Call it when the Store is no
// longer needed so temporary database files can be cleaned up.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the underlying GORM database connection.
func (s *Store) GetDB() *gorm.DB {
	return s.db
}

// LoadProfile returns the profile for userID, or (nil, nil) when none exists.
func (s *Store) LoadProfile(ctx context.Context, userID string) (*Record, error) {
	var rec Record
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&rec)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &rec, nil
}

func (s *Store) CreateProfile(ctx context.Context, rec *Record) error {
	result := s.db.WithContext(ctx).Create(rec)
	return result.Error
}

// ApplyUpdate applies an accumulated Update as a single batched write.
// Counter deltas use in-database increments so that concurrent sessions for
// the same account cannot clobber each other's counts; set appends are
// if-absent merges inside the same transaction.
func (s *Store) ApplyUpdate(ctx context.Context, userID string, upd Update) error {
	if upd.Empty() {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cols := map[string]interface{}{}
		if upd.XPDelta != 0 {
			cols["xp"] = gorm.Expr("xp + ?", upd.XPDelta)
		}
		if upd.MinutesDelta != 0 {
			cols["total_minutes"] = gorm.Expr("total_minutes + ?", upd.MinutesDelta)
		}
		if upd.TriviaWinsDelta != 0 {
			cols["trivia_wins"] = gorm.Expr("trivia_wins + ?", upd.TriviaWinsDelta)
		}
		if upd.Level > 0 {
			cols["level"] = upd.Level
		}
		if len(cols) > 0 {
			result := tx.Model(&Record{}).Where("user_id = ?", userID).UpdateColumns(cols)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("no profile found for user %s", userID)
			}
		}

		if len(upd.AddCountries) == 0 && len(upd.AddStations) == 0 && len(upd.AddBadges) == 0 {
			return nil
		}

		var rec Record
		if err := tx.Where("user_id = ?", userID).First(&rec).Error; err != nil {
			return err
		}

		sets := map[string]interface{}{}
		if merged, changed := appendAbsent(rec.CountryList(), upd.AddCountries); changed {
			sets["countries"] = encodeList(merged)
		}
		if merged, changed := appendAbsent(rec.StationList(), upd.AddStations); changed {
			sets["stations"] = encodeList(merged)
		}
		if merged, changed := appendAbsent(rec.BadgeList(), upd.AddBadges); changed {
			sets["badges"] = encodeList(merged)
		}
		if len(sets) == 0 {
			return nil
		}
		return tx.Model(&Record{}).Where("user_id = ?", userID).Updates(sets).Error
	})
}

// TopByXP returns up to limit profiles ordered by XP, highest first.
func (s *Store) TopByXP(ctx context.Context, limit int) ([]Record, error) {
	var recs []Record
	result := s.db.WithContext(ctx).Order("xp desc").Limit(limit).Find(&recs)
	if result.Error != nil {
		return nil, result.Error
	}
	return recs, nil
}

func appendAbsent(list []string, add []string) ([]string, bool) {
	changed := false
	for _, v := range add {
		if !lo.Contains(list, v) {
			list = append(list, v)
			changed = true
		}
	}
	return list, changed
}

func decodeList(raw string) []string {
	if raw == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil
	}
	return list
}

func encodeList(list []string) string {
	raw, _ := json.Marshal(list)
	return string(raw)
}
