// Package store holds the soft-delete contract. Soft-deletable tables carry
// a nullable deleted_at column and every read states which rows it wants;
// nothing filters implicitly.
package store

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type Visibility int

const (
	// Active excludes soft-deleted rows.
	Active Visibility = iota
	// All includes soft-deleted rows.
	All
)

// VisibilityOf maps an includeDeleted flag to a Visibility.
func VisibilityOf(includeDeleted bool) Visibility {
	if includeDeleted {
		return All
	}
	return Active
}

// Scope returns the gorm scope for v. The column name is unqualified so the
// scope is only safe on single-table queries and preloads.
func (v Visibility) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if v == All {
			return db
		}
		return db.Where("deleted_at IS NULL")
	}
}

// First loads the row with the given primary key. It returns
// gorm.ErrRecordNotFound when the row is missing or hidden by v.
func First[T any](db *gorm.DB, id uint, v Visibility) (*T, error) {
	var row T
	if err := db.Scopes(v.Scope()).First(&row, id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// List returns every row visible under v, in primary key order.
func List[T any](db *gorm.DB, v Visibility) ([]T, error) {
	var rows []T
	if err := db.Scopes(v.Scope()).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SoftDelete stamps deleted_at on an active row. Deleting an already
// deleted or missing row returns gorm.ErrRecordNotFound.
func SoftDelete[T any](db *gorm.DB, id uint, now time.Time) error {
	var model T
	res := db.Model(&model).Scopes(Active.Scope()).Where("id = ?", id).Update("deleted_at", now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsNotFound reports whether err means the row does not exist or is hidden.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
