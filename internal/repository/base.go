// Package repository provides data access layer implementations for the application.
package repository

import (
	"errors"

	"socialhub/internal/models"

	"gorm.io/gorm"
)

// userSummaryColumns are the public fields returned for embedded authors.
const userSummaryColumns = "id, username, full_name, profile_picture"

func selectUserSummary(db *gorm.DB) *gorm.DB {
	return db.Select(userSummaryColumns)
}

func notFoundOr(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return err
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// deleteIn deletes rows of model whose column is in ids. Empty ids is a no-op.
func deleteIn(tx *gorm.DB, model interface{}, column string, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := tx.Where(column+" IN ?", ids).Delete(model)
	return res.RowsAffected, res.Error
}

// pluckIDs returns the primary keys of model matching query/args.
func pluckIDs(tx *gorm.DB, model interface{}, query string, args ...interface{}) ([]uint, error) {
	var ids []uint
	err := tx.Model(model).Where(query, args...).Pluck("id", &ids).Error
	return ids, err
}
