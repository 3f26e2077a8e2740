package main

import (
	"context"
	"os"

	"github.com/diwise/integration-sdk/pkg/adapter/pipes"
	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
)

const (
	appName string = "postgres-extension"
)

func main() {
	appVersion := buildinfo.SourceVersion()

	ctx, log, cleanup := o11y.Init(context.Background(), appName, appVersion, "json")
	defer cleanup()

	ext := newExtension(connect)

	err := pipes.Run(ctx, os.Args[1:], pipes.Handlers{
		Test:              ext.test,
		EndpointURLs:      ext.endpointURLs,
		Collect:           ext.collect,
		AdapterDefinition: ext.adapterDefinition,
	})

	if err != nil {
		log.Error("adapter failed", "err", err.Error())
		cleanup()
		os.Exit(1)
	}
}
