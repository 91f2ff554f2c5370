package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gstbill/gstbill/internal/config"
	"github.com/gstbill/gstbill/internal/logger"
	"github.com/gstbill/gstbill/internal/migration"
	"github.com/gstbill/gstbill/internal/server"
	"github.com/gstbill/gstbill/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
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
