package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"

	"github.com/diwise/integration-sdk/internal/pkg/application/adapterhost"
	"github.com/diwise/integration-sdk/internal/pkg/infrastructure/router"
	api "github.com/diwise/integration-sdk/internal/pkg/presentation/api/adapter"
	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName string = "adapter-host"

var flagArguments = func() []string { return os.Args[1:] }

func main() {
	appVersion := buildinfo.SourceVersion()

	// a .env file is only present during local development
	envErr := godotenv.Load()

	ctx, log, cleanup := o11y.Init(context.Background(), serviceName, appVersion, "json")
	defer cleanup()

	if envErr == nil {
		log.Info("loaded environment from .env")
	}

	flags := parseExternalConfig(ctx, DefaultFlags())

	handler, err := initialize(ctx, flags)
	if err != nil {
		log.Error("failed to initialize adapter host", "err", err.Error())
		cleanup()
		os.Exit(1)
	}

	addr := net.JoinHostPort(flags[listenAddress], flags[servicePort])
	log.Info("starting to listen for connections", "addr", addr, "tls", flags[tlsCertificate] != "")

	if flags[tlsCertificate] != "" {
		err = http.ListenAndServeTLS(addr, flags[tlsCertificate], flags[tlsKey], handler)
	} else {
		err = http.ListenAndServe(addr, handler)
	}

	if err != nil {
		log.Error("failed to listen for connections", "err", err.Error())
		cleanup()
		os.Exit(1)
	}
}

func initialize(ctx context.Context, flags FlagMap) (http.Handler, error) {
	log := logging.GetFromContext(ctx)

	cfgFile, err := os.Open(flags[configPath])
	if err != nil {
		return nil, fmt.Errorf("failed to open command configuration: %w", err)
	}
	defer cfgFile.Close()

	cfg, err := adapterhost.LoadConfiguration(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load command configuration: %w", err)
	}

	var policies io.Reader

	if flags[opaPath] != "" {
		policyFile, err := os.Open(flags[opaPath])
		if err != nil {
			return nil, fmt.Errorf("failed to open authorization policies: %w", err)
		}
		defer policyFile.Close()
		policies = policyFile
	} else {
		log.Warn("no authorization policies configured, all requests will be allowed")
	}

	r := router.New(serviceName)

	err = api.RegisterHandlers(ctx, r, policies, adapterhost.New(cfg), cfg.Version)
	if err != nil {
		return nil, err
	}

	r.Handle("/metrics", promhttp.Handler())

	return r, nil
}
