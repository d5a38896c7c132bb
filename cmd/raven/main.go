package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

//go:generate swag init -g cmd/raven/main.go -d ../../ -o ../../docs

// @title           Raven API
// @version         1.0
// @description     REST API connecting startups with incubators: onboarding, readiness evidence, fundraising campaigns and open innovation challenges.

// @contact.email  aquilesbailo123@gmail.com

// @BasePath  /

// @schemes   http https

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
