package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNotifier_Disabled(t *testing.T) {
	assert.Nil(t, NewNotifier("", "123", zerolog.Nop()))
	assert.Nil(t, NewNotifier("token", "", zerolog.Nop()))

	var n *Notifier
	assert.NoError(t, n.Notify(context.Background(), "dropped"))
}

func TestNotify(t *testing.T) {
	var gotPath string
	var got map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier("abc", "42", zerolog.Nop())
	n.apiBase = srv.URL

	require.NoError(t, n.Notify(context.Background(), "hello"))
	assert.Equal(t, "/botabc/sendMessage", gotPath)
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "hello", got["text"])
}

func TestNotify_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	n := NewNotifier("abc", "42", zerolog.Nop())
	n.apiBase = srv.URL

	err := n.Notify(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
