package main

import (
	"go.uber.org/zap"
)

var logger = zap.NewNop().Sugar()

func logInit(conf config) error {

	zconf := zap.NewProductionConfig()
	zconf.Sampling = nil
	zconf.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if *conf.logVerbose {
		zconf.Level.SetLevel(zap.DebugLevel)
	}

	l, err := zconf.Build()
	if err != nil {
		return err
	}
	logger = l.Sugar()

	// no condition here, as you'll only see the message if
	// Verbose logging really is enabled!
	logger.Debugf("Verbose logging enabled")
	return nil
}

func logFlush() {
	_ = logger.Sync()
}
