package repository

import (
	"context"
	"errors"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/auth"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a row does not exist or belongs to another owner.
var ErrNotFound = errors.New("record not found")

// ApplyOwnerFilter restricts a query to rows of the authenticated owner.
// Without a user in ctx (scheduled jobs) the query is returned unchanged.
func ApplyOwnerFilter(ctx context.Context, query *gorm.DB) *gorm.DB {
	return ApplyOwnerFilterWithColumn(ctx, query, "user_id")
}

// ApplyOwnerFilterWithColumn applies the owner filter on a qualified column.
func ApplyOwnerFilterWithColumn(ctx context.Context, query *gorm.DB, column string) *gorm.DB {
	if owner := auth.OwnerFromContext(ctx); owner != "" {
		return query.Where(column+" = ?", owner)
	}
	return query
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
