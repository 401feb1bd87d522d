package main

import (
	"github.com/neurograph-hq/neurograph/internal/server"
	"github.com/neurograph-hq/neurograph/internal/util"
	"github.com/neurograph-hq/neurograph/pkg/logger"
	"github.com/neurograph-hq/neurograph/pkg/logger/console"
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
