package dispatch_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurokit/triggerline/internal/dispatch"
)

func TestHTTPTransport_Success(t *testing.T) {
	var (
		gotBody        []byte
		gotContentType string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotContentType = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ack":true}`))
	}))
	defer srv.Close()

	tr := dispatch.NewHTTPTransport(srv.Client())
	res, err := tr.Do(context.Background(), &dispatch.Request{
		URL:  srv.URL + "/set_data",
		Body: []byte(`{"trigger_value":7}`),
	})
	require.NoError(t, err)

	assert.Equal(t, 200, res.Status)
	assert.Equal(t, map[string]any{"ack": true}, res.Payload)
	assert.Equal(t, `{"trigger_value":7}`, string(gotBody))
	assert.Equal(t, "application/json", gotContentType)
}

func TestHTTPTransport_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tr := dispatch.NewHTTPTransport(srv.Client())
	_, err := tr.Do(context.Background(), &dispatch.Request{URL: srv.URL, Body: []byte(`{}`)})
	require.Error(t, err)

	var te *dispatch.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 500, te.Status)
}

func TestHTTPTransport_NetworkFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	tr := dispatch.NewHTTPTransport(nil)
	_, err := tr.Do(context.Background(), &dispatch.Request{URL: srv.URL, Body: []byte(`{}`)})
	require.Error(t, err)

	var te *dispatch.TransportError
	require.True(t, errors.As(err, &te))
	assert.Zero(t, te.Status, "network faults carry no HTTP status")
	assert.Error(t, te.Err)
}

func TestHTTPTransport_NonJSONResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	}))
	defer srv.Close()

	tr := dispatch.NewHTTPTransport(srv.Client())
	res, err := tr.Do(context.Background(), &dispatch.Request{URL: srv.URL, Body: []byte(`{}`)})
	require.NoError(t, err)
	assert.Nil(t, res.Payload, "non-JSON bodies are not decoded")
}
