package adapter

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diwise/integration-sdk/internal/pkg/application/adapterhost"
	"github.com/go-chi/chi/v5"
	"github.com/matryer/is"
)

func TestCollect(t *testing.T) {
	is, ts, app := setupTest(t, nil)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodPost, "/collect", bytes.NewBufferString(instanceJSON))

	is.Equal(resp.StatusCode, http.StatusAccepted)
	is.Equal(resp.Header.Get("Content-Type"), "application/json")
	is.Equal(body, collectResultJSON)
	is.Equal(len(app.CollectCalls()), 1)
	is.Equal(string(app.CollectCalls()[0].Body), instanceJSON)
}

func TestTest(t *testing.T) {
	is, ts, app := setupTest(t, nil)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodPost, "/test", bytes.NewBufferString(instanceJSON))

	is.Equal(resp.StatusCode, http.StatusAccepted)
	is.Equal(body, `{}`)
	is.Equal(len(app.TestCalls()), 1)
}

func TestEndpointURLs(t *testing.T) {
	is, ts, _ := setupTest(t, nil)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodPost, "/endpointURLs", bytes.NewBufferString(instanceJSON))

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body, `{"endpointUrls":["https://db.local"]}`)
}

func TestCollectWithoutBodyReturnsBadRequest(t *testing.T) {
	is, ts, app := setupTest(t, nil)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodPost, "/collect", nil)

	is.Equal(resp.StatusCode, http.StatusBadRequest)
	is.Equal(body, "No body in request")
	is.Equal(len(app.CollectCalls()), 0) // adapter should not be invoked
}

func TestCollectWithInvalidJSONReturnsBadRequest(t *testing.T) {
	is, ts, app := setupTest(t, nil)
	defer ts.Close()

	resp, _ := newTestRequest(is, ts, http.MethodPost, "/collect", strings.NewReader("not json"))

	is.Equal(resp.StatusCode, http.StatusBadRequest)
	is.Equal(len(app.CollectCalls()), 0)
}

func TestCollectWithoutResultReturnsServerError(t *testing.T) {
	is, ts, app := setupTest(t, nil)
	defer ts.Close()

	app.CollectFunc = func(context.Context, []byte) ([]byte, error) {
		return nil, &adapterhost.NoResultError{ExitCode: 1, Stderr: "Traceback"}
	}

	resp, body := newTestRequest(is, ts, http.MethodPost, "/collect", bytes.NewBufferString(instanceJSON))

	is.Equal(resp.StatusCode, http.StatusInternalServerError)
	is.Equal(body, "No result from adapter: Traceback")
}

func TestFailingAdapterReturnsServerError(t *testing.T) {
	is, ts, app := setupTest(t, nil)
	defer ts.Close()

	app.TestFunc = func(context.Context, []byte) ([]byte, error) {
		return nil, io.ErrUnexpectedEOF
	}

	resp, body := newTestRequest(is, ts, http.MethodPost, "/test", bytes.NewBufferString(instanceJSON))

	is.Equal(resp.StatusCode, http.StatusInternalServerError)
	is.Equal(body, "Unknown server error")
}

func TestAdapterDefinition(t *testing.T) {
	is, ts, _ := setupTest(t, nil)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodGet, "/adapterDefinition", nil)

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body, `{"adapter_kind":"PostgreSQLAdapter"}`)
}

func TestMissingAdapterDefinitionReturnsNoContent(t *testing.T) {
	is, ts, app := setupTest(t, nil)
	defer ts.Close()

	app.AdapterDefinitionFunc = func(context.Context) ([]byte, error) {
		return nil, &adapterhost.NoResultError{}
	}

	resp, _ := newTestRequest(is, ts, http.MethodGet, "/adapterDefinition", nil)

	is.Equal(resp.StatusCode, http.StatusNoContent)
}

func TestAPIVersion(t *testing.T) {
	is, ts, _ := setupTest(t, nil)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodGet, "/apiVersion", nil)

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body, "1.2")
}

func TestPoliciesAreEnforced(t *testing.T) {
	is, ts, app := setupTest(t, strings.NewReader(policies))
	defer ts.Close()

	resp, _ := newTestRequest(is, ts, http.MethodPost, "/collect", bytes.NewBufferString(instanceJSON))
	is.Equal(resp.StatusCode, http.StatusUnauthorized)
	is.Equal(len(app.CollectCalls()), 0)

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/collect", bytes.NewBufferString(instanceJSON))
	req.Header.Set("Authorization", "Bearer letmein")
	resp, err := http.DefaultClient.Do(req)
	is.NoErr(err)
	resp.Body.Close()

	is.Equal(resp.StatusCode, http.StatusAccepted)
}

func newTestRequest(is *is.I, ts *httptest.Server, method, path string, body io.Reader) (*http.Response, string) {
	req, _ := http.NewRequest(method, ts.URL+path, body)
	resp, err := http.DefaultClient.Do(req)
	is.NoErr(err) // http request failed
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	is.NoErr(err) // failed to read response body

	return resp, string(respBody)
}

func setupTest(t *testing.T, policies io.Reader) (*is.I, *httptest.Server, *adapterhost.RunnerMock) {
	is := is.New(t)
	r := chi.NewRouter()
	ts := httptest.NewServer(r)

	app := &adapterhost.RunnerMock{
		CollectFunc: func(ctx context.Context, body []byte) ([]byte, error) {
			return []byte(collectResultJSON), nil
		},
		TestFunc: func(ctx context.Context, body []byte) ([]byte, error) {
			return []byte(`{}`), nil
		},
		EndpointURLsFunc: func(ctx context.Context, body []byte) ([]byte, error) {
			return []byte(`{"endpointUrls":["https://db.local"]}`), nil
		},
		AdapterDefinitionFunc: func(ctx context.Context) ([]byte, error) {
			return []byte(`{"adapter_kind":"PostgreSQLAdapter"}`), nil
		},
	}

	err := RegisterHandlers(context.Background(), r, policies, app, adapterhost.Version{Major: 1, Minor: 2})
	is.NoErr(err)

	return is, ts, app
}

const instanceJSON string = `{"adapter_key":{"name":"instance","adapter_kind":"PostgreSQLAdapter","object_kind":"PostgreSQLAdapter_Instance","identifiers":[]}}`

const collectResultJSON string = `{"result":[],"relationships":[],"nonExistingObjects":[]}`

const policies string = `package adapter.authz

import rego.v1

default allow := false

allow := {"adapter": input.adapter} if input.token == "letmein"
`
