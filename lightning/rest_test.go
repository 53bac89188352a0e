package lightning

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/bolt-observer/eclair-adapter/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type FooBar struct {
	Foo string `json:"foo"`
	Bar int    `json:"bar"`
}

func respond(status int, contents string) GetDoFunc {
	return func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(bytes.NewReader([]byte(contents))),
		}, nil
	}
}

func TestCallRequest(t *testing.T) {
	var data FooBar

	h := NewHTTPAPI()
	h.DoFunc = func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "http://127.0.0.1:8080/createinvoice", req.URL.String())
		assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))

		user, password, ok := req.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "", user)
		assert.Equal(t, "secret", password)

		require.NoError(t, req.ParseForm())
		assert.Equal(t, "Payment to alice", req.PostForm.Get("description"))
		assert.Equal(t, "1000", req.PostForm.Get("amountMsat"))

		return respond(http.StatusOK, `{"foo":"foostring","bar":1}`)(req)
	}

	err := h.Call(context.Background(), alice, CREATEINVOICE, map[string]string{"description": "Payment to alice", "amountMsat": "1000"}, &data)
	require.NoError(t, err)

	assert.Equal(t, "foostring", data.Foo)
	assert.Equal(t, 1, data.Bar)
}

func TestCallEndpointWithScheme(t *testing.T) {
	h := NewHTTPAPI()
	h.DoFunc = func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "https://eclair.local:8443/base/getinfo", req.URL.String())
		return respond(http.StatusOK, `{}`)(req)
	}

	node := &entities.Node{Name: "remote", Endpoint: "https://eclair.local:8443/base/"}
	assert.NoError(t, h.Call(context.Background(), node, GETINFO, nil, nil))
}

func TestCallEclairError(t *testing.T) {
	var data FooBar

	h := NewHTTPAPI()
	h.DoFunc = respond(http.StatusBadRequest, `{"error":"cannot open connection with oneself"}`)

	err := h.Call(context.Background(), alice, CONNECT, map[string]string{"nodeId": alicePubKey}, &data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot open connection with oneself")
	assert.Equal(t, FooBar{}, data)
}

func TestCallHTTPError(t *testing.T) {
	h := NewHTTPAPI()
	h.DoFunc = respond(http.StatusUnauthorized, `The supplied authentication is invalid`)

	err := h.Call(context.Background(), alice, GETINFO, nil, &FooBar{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http got error 401")
}

func TestCallTransportError(t *testing.T) {
	refused := errors.New("connection refused")

	h := NewHTTPAPI()
	h.DoFunc = func(req *http.Request) (*http.Response, error) {
		return nil, refused
	}

	err := h.Call(context.Background(), alice, GETINFO, nil, &FooBar{})
	assert.ErrorIs(t, err, refused)
}

func TestCallDecodeError(t *testing.T) {
	h := NewHTTPAPI()
	h.DoFunc = respond(http.StatusOK, `not json`)

	err := h.Call(context.Background(), alice, GETINFO, nil, &FooBar{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode error")
}

func TestCallMisconfigured(t *testing.T) {
	h := NewHTTPAPI()

	err := h.Call(context.Background(), &entities.Node{Name: "nowhere"}, GETINFO, nil, &FooBar{})
	assert.ErrorIs(t, err, ErrConfiguration)

	err = h.Call(context.Background(), nil, GETINFO, nil, &FooBar{})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestDoWithoutClient(t *testing.T) {
	h := &HTTPAPI{}

	_, err := h.Do(&http.Request{})
	assert.Error(t, err)
}
