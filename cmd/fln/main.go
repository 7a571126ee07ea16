package main

import (
	"fmt"

	"github.com/temirov/fln/internal/cli"
	"github.com/temirov/fln/internal/utils"
)

// main is the entry point for the fln command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger(utils.LogLevelNormal)
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()
	if applicationExecutionError := cli.Execute(); applicationExecutionError != nil {
		loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage + ": " + applicationExecutionError.Error())
	}
}
