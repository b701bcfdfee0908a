package sms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Send(t *testing.T) {
	var loginCalls, sendCalls int

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		switch r.URL.Path {
		case "/auth/login":
			loginCalls++
			assert.Equal(t, "clinic@example.com", r.PostFormValue("email"))
			assert.Equal(t, "secret", r.PostFormValue("password"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":{"token":"gateway-token"}}`))
		case "/message/sms/send":
			sendCalls++
			assert.Equal(t, "Bearer gateway-token", r.Header.Get("Authorization"))
			assert.Equal(t, "998901234567", r.PostFormValue("mobile_phone"))
			assert.Equal(t, "Your MyMd verification code: 555444", r.PostFormValue("message"))
			assert.Equal(t, "4546", r.PostFormValue("from"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":{"id":"1"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer gateway.Close()

	client := NewClient(Config{
		BaseURL:  gateway.URL,
		Email:    "clinic@example.com",
		Password: "secret",
		From:     "4546",
	})

	err := client.Send(context.Background(), "998901234567", "Your MyMd verification code: 555444")
	require.NoError(t, err)
	assert.Equal(t, 1, loginCalls)
	assert.Equal(t, 1, sendCalls)
}

func TestClient_SendFailsWithoutToken(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer gateway.Close()

	client := NewClient(Config{BaseURL: gateway.URL, Email: "e", Password: "p", From: "4546"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // no retries: the context is already done after the first attempt
	err := client.Send(ctx, "998901234567", "msg")
	assert.Error(t, err)
}
