// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON_PostsBodyAndDecodes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Key secret", r.Header.Get("Authorization"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "ping", in["msg"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"reply":"pong"}`))
	}))
	defer ts.Close()

	header := http.Header{}
	header.Set("Authorization", "Key secret")

	var out struct {
		Reply string `json:"reply"`
	}
	err := DoJSON(context.Background(), ts.Client(), http.MethodPost, ts.URL, header, map[string]string{"msg": "ping"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "pong", out.Reply)
}

func TestDoJSON_GetWithoutBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Empty(t, body)
		w.Write([]byte(`{"n":3}`))
	}))
	defer ts.Close()

	var out struct {
		N int `json:"n"`
	}
	require.NoError(t, DoJSON(context.Background(), ts.Client(), http.MethodGet, ts.URL, nil, nil, &out))
	assert.Equal(t, 3, out.N)
}

func TestDoJSON_Non2xxReturnsStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("  invalid key \n"))
	}))
	defer ts.Close()

	err := DoJSON(context.Background(), ts.Client(), http.MethodGet, ts.URL, nil, nil, nil)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.Equal(t, "invalid key", se.Body)
	assert.Contains(t, err.Error(), "HTTP 401")
}

func TestDoJSON_BadJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer ts.Close()

	var out map[string]any
	err := DoJSON(context.Background(), ts.Client(), http.MethodGet, ts.URL, nil, nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding response")
}

func TestDoJSON_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := DoJSON(ctx, ts.Client(), http.MethodGet, ts.URL, nil, nil, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
