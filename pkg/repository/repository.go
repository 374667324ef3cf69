package repository

import (
	"context"

	"github.com/haulbase/haulbase/pkg/db/option"
	"gorm.io/gorm"
)

// Repository is the generic keyed-entity store shared by the domain packages.
// Filters are expressed as a zero-or-partial entity plus QueryOption combinators.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	Save(ctx context.Context, resource *T) error
	Update(ctx context.Context, resourceID string, resource any) error
	Delete(ctx context.Context, resourceID string) error
	Count(ctx context.Context, query *T) (int64, error)
	BatchCreate(ctx context.Context, resources []*T) error
	BatchSave(ctx context.Context, resources []*T) error
}
