package database

import (
	"time"

	"gorm.io/gorm"
)

// DateBetween restricts a query to rows whose date column falls on or between
// the calendar days of from and to. A zero bound is open.
func DateBetween(column string, from, to time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !from.IsZero() {
			db = db.Where(column+" >= ?", calendarDay(from))
		}
		if !to.IsZero() {
			db = db.Where(column+" < ?", calendarDay(to).AddDate(0, 0, 1))
		}
		return db
	}
}

func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Paginate applies an offset and limit. A non-positive limit leaves the
// query unbounded.
func Paginate(offset, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Offset(offset).Limit(limit)
	}
}
