package truckticket

import (
	"github.com/haulbase/haulbase/internal/truckticket/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("truckticket",
	fx.Provide(repository.Provide),
)
