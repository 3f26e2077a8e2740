package main

import (
	"context"
	"flag"

	"github.com/diwise/service-chassis/pkg/infrastructure/env"
)

type FlagType int
type FlagMap map[FlagType]string

const (
	listenAddress FlagType = iota
	servicePort

	configPath
	opaPath

	tlsCertificate
	tlsKey
)

func DefaultFlags() FlagMap {
	return FlagMap{
		listenAddress:  "",
		servicePort:    "8080",
		configPath:     "/opt/adapter/commands.yaml",
		opaPath:        "",
		tlsCertificate: "",
		tlsKey:         "",
	}
}

// parseExternalConfig overrides the defaults with environment variables,
// which in turn are overridden by command line flags
func parseExternalConfig(ctx context.Context, flags FlagMap) FlagMap {

	apply := func(f FlagType, variable string) {
		flags[f] = env.GetVariableOrDefault(ctx, variable, flags[f])
	}

	apply(listenAddress, "LISTEN_ADDRESS")
	apply(servicePort, "SERVICE_PORT")
	apply(configPath, "ADAPTER_HOST_CONFIG")
	apply(opaPath, "ADAPTER_HOST_POLICIES")
	apply(tlsCertificate, "TLS_CERTIFICATE")
	apply(tlsKey, "TLS_KEY")

	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)

	bind := func(f FlagType, name, usage string) *string {
		return fs.String(name, flags[f], usage)
	}

	values := map[FlagType]*string{
		configPath:  bind(configPath, "config", "path to the adapter command configuration"),
		opaPath:     bind(opaPath, "policies", "path to authorization policies, all requests are allowed when empty"),
		servicePort: bind(servicePort, "port", "port to listen on"),
	}

	_ = fs.Parse(flagArguments())

	for f, v := range values {
		flags[f] = *v
	}

	return flags
}
