package salesline

import (
	"github.com/haulbase/haulbase/internal/salesline/event"
	"github.com/haulbase/haulbase/internal/salesline/service"
	"go.uber.org/fx"
)

var Module = fx.Module("salesline.service",
	fx.Provide(event.NewOutboxPublisher),
	fx.Provide(service.New),
)
