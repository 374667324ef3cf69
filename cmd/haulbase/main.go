package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/haulbase/haulbase/internal/account"
	"github.com/haulbase/haulbase/internal/billingconfig"
	"github.com/haulbase/haulbase/internal/config"
	"github.com/haulbase/haulbase/internal/invoiceconfig"
	"github.com/haulbase/haulbase/internal/logger"
	"github.com/haulbase/haulbase/internal/migration"
	"github.com/haulbase/haulbase/internal/salesline"
	"github.com/haulbase/haulbase/internal/truckticket"
	"github.com/haulbase/haulbase/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,

		// Functional domains
		account.Module,
		invoiceconfig.Module,
		truckticket.Module,
		salesline.Module,
		billingconfig.Module,
	)

	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
