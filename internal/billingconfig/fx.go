package billingconfig

import (
	"github.com/haulbase/haulbase/internal/billingconfig/repository"
	"github.com/haulbase/haulbase/internal/billingconfig/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billingconfig.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
