package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	if err := newRootCmd(logger).Execute(); err != nil {
		logger.WithError(err).Fatal("Command failed")
	}
}
