package pipes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/diwise/integration-sdk/pkg/adapter"
	"github.com/diwise/integration-sdk/pkg/adapter/errors"
	"github.com/diwise/integration-sdk/pkg/adapter/instance"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

const (
	MethodTest              string = "test"
	MethodEndpointURLs      string = "endpoint_urls"
	MethodCollect           string = "collect"
	MethodAdapterDefinition string = "adapter_definition"
)

// ReadInput reads the whole input document from the named pipe at path. It
// blocks until the writing end has been closed.
func ReadInput(ctx context.Context, path string) ([]byte, error) {
	logging.GetFromContext(ctx).Debug("reading input", "pipe", path)

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read from input pipe %s: %s (%w)", path, err.Error(), errors.ErrNoInput)
	}

	if len(bytes.TrimSpace(b)) == 0 {
		return nil, errors.NewNoInputError(fmt.Sprintf("input pipe %s was empty", path))
	}

	return b, nil
}

// WriteOutput writes result as json to the named pipe at path
func WriteOutput(ctx context.Context, path string, result any) error {
	log := logging.GetFromContext(ctx)

	b, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %s (%w)", err.Error(), errors.ErrInternal)
	}

	log.Debug("writing output", "pipe", path, "size", len(b))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open output pipe %s: %s (%w)", path, err.Error(), errors.ErrInternal)
	}
	defer f.Close()

	if _, err = f.Write(b); err != nil {
		return fmt.Errorf("failed to write to output pipe %s: %s (%w)", path, err.Error(), errors.ErrInternal)
	}

	return nil
}

// Handlers are the entry points of an adapter. Collect and AdapterDefinition
// are required. An adapter without Test always passes its connection test,
// and one without EndpointURLs has no endpoints.
type Handlers struct {
	Test              func(context.Context, *instance.AdapterInstance) *adapter.TestResult
	EndpointURLs      func(context.Context, *instance.AdapterInstance) *adapter.EndpointResult
	Collect           func(context.Context, *instance.AdapterInstance) *adapter.CollectResult
	AdapterDefinition func(context.Context) any
}

// Run dispatches an invocation from the adapter host. args are the
// command line arguments following the program name, i.e. the method
// followed by the paths of the input and output pipes.
func Run(ctx context.Context, args []string, h Handlers) error {
	if len(args) != 3 {
		return fmt.Errorf("arguments must be <method> <input pipe> <output pipe>, got %d arguments (%w)", len(args), errors.ErrNoInput)
	}

	method, inputPipe, outputPipe := args[0], args[1], args[2]

	ctx = logging.NewContextWithLogger(ctx, logging.GetFromContext(ctx), "method", method)
	log := logging.GetFromContext(ctx)
	log.Info("running adapter")

	if method == MethodAdapterDefinition {
		if h.AdapterDefinition == nil {
			return fmt.Errorf("adapter does not provide a definition (%w)", errors.ErrInternal)
		}
		return WriteOutput(ctx, outputPipe, h.AdapterDefinition(ctx))
	}

	if !slices.Contains([]string{MethodTest, MethodEndpointURLs, MethodCollect}, method) {
		return fmt.Errorf("command %s not found (%w)", method, errors.ErrInternal)
	}

	b, err := ReadInput(ctx, inputPipe)
	if err != nil {
		return err
	}

	ai, err := instance.New(b)
	if err != nil {
		return err
	}

	var result any

	switch method {
	case MethodTest:
		result = adapter.NewTestResult()
		if h.Test != nil {
			result = h.Test(ctx, ai)
		}
	case MethodEndpointURLs:
		result = adapter.NewEndpointResult()
		if h.EndpointURLs != nil {
			result = h.EndpointURLs(ctx, ai)
		}
	case MethodCollect:
		if h.Collect == nil {
			return fmt.Errorf("adapter does not support collection (%w)", errors.ErrInternal)
		}
		result = h.Collect(ctx, ai)
	}

	return WriteOutput(ctx, outputPipe, result)
}
