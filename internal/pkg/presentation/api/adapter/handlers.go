package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/diwise/integration-sdk/internal/pkg/application/adapterhost"
	"github.com/diwise/integration-sdk/internal/pkg/presentation/api/adapter/auth"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("adapter-host/api")

// RegisterHandlers adds the adapter endpoints to r. Requests are checked
// against policies when given, otherwise every request is let through.
func RegisterHandlers(ctx context.Context, r chi.Router, policies io.Reader, app adapterhost.Runner, version adapterhost.Version) error {

	authenticator := auth.AllowAll()

	if policies != nil {
		var err error
		authenticator, err = auth.NewAuthenticator(ctx, policies)
		if err != nil {
			return fmt.Errorf("failed to create api authenticator: %w", err)
		}
	}

	r.Group(func(r chi.Router) {
		r.Use(Logger(logging.GetFromContext(ctx)))

		r.Post("/collect", NewInvocationHandler(adapterhost.MethodCollect, http.StatusAccepted, app.Collect, authenticator))
		r.Post("/test", NewInvocationHandler(adapterhost.MethodTest, http.StatusAccepted, app.Test, authenticator))
		r.Post("/endpointURLs", NewInvocationHandler(adapterhost.MethodEndpointURLs, http.StatusOK, app.EndpointURLs, authenticator))
		r.Get("/adapterDefinition", NewAdapterDefinitionHandler(app, authenticator))
		r.Get("/apiVersion", NewAPIVersionHandler(version))
	})

	return nil
}

func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			_, ctx, _ = o11y.AddTraceIDToLoggerAndStoreInContext(
				trace.SpanFromContext(ctx),
				logger,
				ctx)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type invokeFunc func(ctx context.Context, body []byte) ([]byte, error)

// NewInvocationHandler runs the adapter command for method with the request
// body as input, and responds with goodResponseCode and whatever the
// adapter wrote to its output pipe
func NewInvocationHandler(method string, goodResponseCode int, invoke invokeFunc, authenticator auth.Enticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		started := time.Now()

		ctx, span := tracer.Start(r.Context(), method)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		log := logging.GetFromContext(ctx).With(slog.String("method", method))
		defer r.Body.Close()

		if err = authenticator.CheckAccess(ctx, r, method); err != nil {
			log.Warn("access denied", "err", err.Error())
			respond(w, method, http.StatusUnauthorized, started, []byte("Access denied"), "text/plain")
			return
		}

		body, err := io.ReadAll(r.Body)
		if err == nil && !json.Valid(body) {
			err = errors.New("request body is not valid json")
		}
		if err != nil {
			log.Warn("bad request", "err", err.Error())
			respond(w, method, http.StatusBadRequest, started, []byte("No body in request"), "text/plain")
			return
		}

		output, err := invoke(ctx, body)
		if err != nil {
			code, message := errorResponse(err)
			log.Error("adapter invocation failed", "err", err.Error())
			respond(w, method, code, started, []byte(message), "text/plain")
			return
		}

		respond(w, method, goodResponseCode, started, output, "application/json")
	}
}

func NewAdapterDefinitionHandler(app adapterhost.Runner, authenticator auth.Enticator) http.HandlerFunc {
	const method string = adapterhost.MethodAdapterDefinition

	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		started := time.Now()

		ctx, span := tracer.Start(r.Context(), method)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		log := logging.GetFromContext(ctx)

		if err = authenticator.CheckAccess(ctx, r, method); err != nil {
			log.Warn("access denied", "err", err.Error())
			respond(w, method, http.StatusUnauthorized, started, []byte("Access denied"), "text/plain")
			return
		}

		output, err := app.AdapterDefinition(ctx)
		if errors.Is(err, adapterhost.ErrNoResult) {
			// adapters without a definition are described by their describe.xml
			log.Info("adapter did not provide a definition")
			err = nil
			respond(w, method, http.StatusNoContent, started, nil, "")
			return
		}

		if err != nil {
			code, message := errorResponse(err)
			log.Error("failed to retrieve adapter definition", "err", err.Error())
			respond(w, method, code, started, []byte(message), "text/plain")
			return
		}

		respond(w, method, http.StatusOK, started, output, "application/json")
	}
}

func NewAPIVersionHandler(version adapterhost.Version) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(version.String()))
	}
}

func errorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, adapterhost.ErrNoInput):
		return http.StatusBadRequest, "No body in request"
	case errors.Is(err, adapterhost.ErrNoResult):
		nr := &adapterhost.NoResultError{}
		if errors.As(err, &nr) && nr.Stderr != "" {
			return http.StatusInternalServerError, "No result from adapter: " + nr.Stderr
		}
		return http.StatusInternalServerError, "No result from adapter"
	default:
		return http.StatusInternalServerError, "Unknown server error"
	}
}

func respond(w http.ResponseWriter, method string, code int, started time.Time, body []byte, contentType string) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(code)
	if len(body) > 0 {
		w.Write(body)
	}

	observe(method, code, started)
}
