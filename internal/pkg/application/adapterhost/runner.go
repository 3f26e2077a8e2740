package adapterhost

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("adapter-host/runner")

var (
	ErrNoResult = errors.New("no result from adapter")
	ErrNoInput  = errors.New("no input")
)

// NoResultError is returned when the adapter process exits without writing
// anything to its output pipe
type NoResultError struct {
	ExitCode int
	Stderr   string
}

func (e *NoResultError) Error() string {
	return fmt.Sprintf("%s (exit code %d)", ErrNoResult.Error(), e.ExitCode)
}

func (e *NoResultError) Is(target error) bool {
	return target == ErrNoResult
}

//go:generate moq -rm -out runner_mock.go . Runner

type Runner interface {
	Collect(ctx context.Context, body []byte) ([]byte, error)
	Test(ctx context.Context, body []byte) ([]byte, error)
	EndpointURLs(ctx context.Context, body []byte) ([]byte, error)
	AdapterDefinition(ctx context.Context) ([]byte, error)
}

type runner struct {
	cfg     *Config
	tempDir string
	poll    time.Duration
}

func New(cfg *Config) Runner {
	return &runner{
		cfg:     cfg,
		tempDir: os.TempDir(),
		poll:    50 * time.Millisecond,
	}
}

func (r *runner) Collect(ctx context.Context, body []byte) ([]byte, error) {
	return r.invoke(ctx, MethodCollect, body)
}

func (r *runner) Test(ctx context.Context, body []byte) ([]byte, error) {
	return r.invoke(ctx, MethodTest, body)
}

func (r *runner) EndpointURLs(ctx context.Context, body []byte) ([]byte, error) {
	return r.invoke(ctx, MethodEndpointURLs, body)
}

func (r *runner) AdapterDefinition(ctx context.Context) ([]byte, error) {
	return r.invoke(ctx, MethodAdapterDefinition, []byte("{}"))
}

func (r *runner) invoke(ctx context.Context, method string, body []byte) (output []byte, err error) {
	ctx, span := tracer.Start(ctx, method)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if len(bytes.TrimSpace(body)) == 0 {
		err = fmt.Errorf("%s requires a request body: %w", method, ErrNoInput)
		return nil, err
	}

	args, err := r.cfg.Command(method)
	if err != nil {
		return nil, err
	}

	var env []string
	if method != MethodAdapterDefinition {
		env, err = environment(body)
		if err != nil {
			err = fmt.Errorf("%s: %w", err.Error(), ErrNoInput)
			return nil, err
		}
	}

	invocation := uuid.NewString()
	span.SetAttributes(attribute.String("invocation", invocation))

	dir := filepath.Join(r.tempDir, "adapter-"+invocation)
	if err = os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create pipe directory: %w", err)
	}
	defer os.RemoveAll(dir)

	inputPipe := filepath.Join(dir, "input_pipe")
	outputPipe := filepath.Join(dir, "output_pipe")

	for _, p := range []string{inputPipe, outputPipe} {
		if err = mkfifo(p); err != nil {
			return nil, fmt.Errorf("failed to create pipe %s: %w", p, err)
		}
	}

	ctx = logging.NewContextWithLogger(ctx, logging.GetFromContext(ctx), "method", method, "invocation", invocation)
	log := logging.GetFromContext(ctx)

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], inputPipe, outputPipe)...)
	cmd.Env = append(os.Environ(), env...)
	cmd.WaitDelay = time.Second

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.Stdout, cmd.Stderr = stdout, stderr

	if err = cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start adapter: %w", err)
	}

	log.Debug("started adapter", "command", cmd.String())

	written := make(chan error, 1)
	go func() {
		written <- writeInput(inputPipe, body)
	}()

	type readResult struct {
		b   []byte
		err error
	}

	read := make(chan readResult, 1)
	go func() {
		b, err := os.ReadFile(outputPipe)
		read <- readResult{b, err}
	}()

	waitErr := cmd.Wait()

	if err := await(written, r.poll, func() { release(inputPipe, os.O_RDONLY) }); err != nil {
		log.Debug("adapter did not read all of its input", "err", err.Error())
	}
	result := await(read, r.poll, func() { release(outputPipe, os.O_WRONLY) })

	if stdout.Len() > 0 {
		log.Debug("adapter wrote to stdout", "stdout", stdout.String())
	}

	if result.err != nil {
		err = fmt.Errorf("failed to read adapter output: %w", result.err)
		return nil, err
	}

	if len(bytes.TrimSpace(result.b)) == 0 {
		nr := &NoResultError{ExitCode: cmd.ProcessState.ExitCode(), Stderr: stderr.String()}
		log.Error("adapter exited without a result", "exit_code", nr.ExitCode, "stderr", nr.Stderr)
		err = nr
		return nil, err
	}

	if waitErr != nil {
		log.Warn("adapter exited with an error after writing its result", "err", waitErr.Error(), "stderr", stderr.String())
	}

	return result.b, nil
}

func writeInput(path string, body []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(body)
	return err
}

// await waits for a pipe goroutine to finish once the adapter process has
// exited. A goroutine may still be blocked opening its end of a pipe the
// adapter never touched, so release is called until it gets through.
func await[T any](done <-chan T, poll time.Duration, release func()) T {
	select {
	case v := <-done:
		return v
	default:
	}

	for {
		release()

		select {
		case v := <-done:
			return v
		case <-time.After(poll):
		}
	}
}
