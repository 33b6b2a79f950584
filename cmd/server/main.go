package main

import (
	"github.com/inkwell-labs/cartograph/internal/server"
	"github.com/inkwell-labs/cartograph/internal/util"
	"github.com/inkwell-labs/cartograph/pkg/logger"
	"github.com/inkwell-labs/cartograph/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
