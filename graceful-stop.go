package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"
)

func gracefulStop(additional func()) {

	// Handle ^C and SIGTERM gracefully
	var gracefulStop = make(chan os.Signal, 1)
	signal.Notify(gracefulStop, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-gracefulStop
		logger.Infof("Caught signal: %+v", sig)

		additional()

		// give the in-flight invocation a chance to finish its write
		time.Sleep(2 * time.Second)
		logFlush()
		os.Exit(0)
	}()
}
