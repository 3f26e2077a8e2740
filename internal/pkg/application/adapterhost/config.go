package adapterhost

import (
	"fmt"
	"io"
	"strings"

	yaml "gopkg.in/yaml.v2"
)

const (
	MethodCollect           string = "collect"
	MethodTest              string = "test"
	MethodEndpointURLs      string = "endpoint_urls"
	MethodAdapterDefinition string = "adapter_definition"
)

type Commands struct {
	Collect           string `yaml:"collect"`
	Test              string `yaml:"test"`
	EndpointURLs      string `yaml:"endpoint_urls"`
	AdapterDefinition string `yaml:"adapter_definition"`
}

type Version struct {
	Major int `yaml:"major"`
	Minor int `yaml:"minor"`
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

type Config struct {
	Commands Commands `yaml:"commands"`
	Version  Version  `yaml:"version"`
}

// Command returns the configured command line for method, split into the
// program and its arguments
func (c *Config) Command(method string) ([]string, error) {
	var cmd string

	switch method {
	case MethodCollect:
		cmd = c.Commands.Collect
	case MethodTest:
		cmd = c.Commands.Test
	case MethodEndpointURLs:
		cmd = c.Commands.EndpointURLs
	case MethodAdapterDefinition:
		cmd = c.Commands.AdapterDefinition
	default:
		return nil, fmt.Errorf("unknown method %s", method)
	}

	args := strings.Fields(cmd)
	if len(args) == 0 {
		return nil, fmt.Errorf("no command configured for %s", method)
	}

	return args, nil
}

func LoadConfiguration(data io.Reader) (*Config, error) {

	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	err = yaml.Unmarshal(buf, &cfg)

	return cfg, err
}
