package invoiceconfig

import (
	"github.com/haulbase/haulbase/internal/invoiceconfig/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("invoiceconfig",
	fx.Provide(repository.Provide),
)
