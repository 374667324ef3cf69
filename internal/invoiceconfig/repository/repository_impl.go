package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	invoiceconfigdomain "github.com/haulbase/haulbase/internal/invoiceconfig/domain"
	"github.com/haulbase/haulbase/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	store repository.Repository[invoiceconfigdomain.InvoiceConfiguration]
}

func Provide(db *gorm.DB) invoiceconfigdomain.Repository {
	return &repo{store: repository.ProvideStore[invoiceconfigdomain.InvoiceConfiguration](db)}
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*invoiceconfigdomain.InvoiceConfiguration, error) {
	return r.store.FindOne(ctx, &invoiceconfigdomain.InvoiceConfiguration{ID: id})
}
