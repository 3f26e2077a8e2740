package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/open-policy-agent/opa/rego"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("adapter-host/authz")

var ErrAccessDenied = errors.New("access denied")

type Enticator interface {
	CheckAccess(ctx context.Context, r *http.Request, method string) error
}

type enticatorImpl struct {
	preparedQuery rego.PreparedEvalQuery
}

// NewAuthenticator prepares the rego policies read from policies. The
// policies must define data.adapter.authz.allow, evaluating to an object
// when a request should be let through.
func NewAuthenticator(ctx context.Context, policies io.Reader) (Enticator, error) {

	module, err := io.ReadAll(policies)
	if err != nil {
		return nil, fmt.Errorf("unable to read authz policies: %s", err.Error())
	}

	impl := &enticatorImpl{}

	impl.preparedQuery, err = rego.New(
		rego.Query("x = data.adapter.authz.allow"),
		rego.Module("adapter.rego", string(module)),
	).PrepareForEval(ctx)

	if err != nil {
		return nil, err
	}

	return impl, nil
}

type allowAll struct{}

// AllowAll returns an Enticator that lets every request through. It is used
// when the adapter host has not been configured with any policies.
func AllowAll() Enticator {
	return allowAll{}
}

func (allowAll) CheckAccess(context.Context, *http.Request, string) error {
	return nil
}

func (e *enticatorImpl) CheckAccess(ctx context.Context, r *http.Request, method string) error {
	var err error

	_, span := tracer.Start(ctx, "check-auth")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	token := r.Header.Get("Authorization")
	token, _ = strings.CutPrefix(token, "Bearer ")

	input := map[string]any{
		"method":  r.Method,
		"path":    strings.Split(strings.Trim(r.URL.Path, "/"), "/"),
		"token":   token,
		"adapter": method,
	}

	results, err := e.preparedQuery.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		err = fmt.Errorf("opa eval failed: %w", err)
		return err
	}

	if len(results) == 0 {
		err = fmt.Errorf("opa query could not be satisfied (%w)", ErrAccessDenied)
		return err
	}

	binding := results[0].Bindings["x"]

	// a denied request yields a single bool
	allowed, ok := binding.(bool)
	if ok && !allowed {
		err = ErrAccessDenied
		return err
	}

	if _, ok = binding.(map[string]any); !ok {
		err = errors.New("opa error: unexpected result type")
		return err
	}

	return nil
}
