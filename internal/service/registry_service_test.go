package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegistryLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/check/IT/11111111111":
			w.Write([]byte(`{"name": "Fornitore SRL", "address": "Via Roma 1, Milano", "valid": true}`))
		case "/check/IT/00000000000":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	svc := NewRegistryService(srv.URL, time.Second, 2, zap.NewNop())
	ctx := context.Background()

	info, err := svc.Lookup(ctx, "11111111111", "IT")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "Fornitore SRL", info.Name)
	assert.True(t, info.Valid)

	// Unknown ids are "no info", not an error.
	info, err = svc.Lookup(ctx, "00000000000", "IT")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestRegistryLookupRetriesRateLimit(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"name": "Cliente SPA", "valid": true}`))
	}))
	defer srv.Close()

	svc := NewRegistryService(srv.URL, time.Second, 3, zap.NewNop())

	info, err := svc.Lookup(context.Background(), "22222222222", "IT")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, 2, calls)
}

func TestRegistryLookupDisabledWithoutBaseURL(t *testing.T) {
	svc := NewRegistryService("", time.Second, 2, zap.NewNop())

	info, err := svc.Lookup(context.Background(), "11111111111", "IT")
	assert.NoError(t, err)
	assert.Nil(t, info)
}
