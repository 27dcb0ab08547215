package main

import (
	"github.com/signalhouse/brandgraph/internal/server"
	"github.com/signalhouse/brandgraph/internal/util"
	"github.com/signalhouse/brandgraph/pkg/logger"
	"github.com/signalhouse/brandgraph/pkg/logger/console"
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
