package lightning

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bolt-observer/eclair-adapter/entities"
)

// DefaultHTTPTimeout bounds one request to a node
const DefaultHTTPTimeout = 30 * time.Second

// GetDoFunc = signature for Do function
type GetDoFunc func(req *http.Request) (*http.Response, error)

// HTTPAPI is the Gateway for the Eclair REST API
type HTTPAPI struct {
	DoFunc GetDoFunc
	client *http.Client
}

// Compile time check for the interface
var _ Gateway = &HTTPAPI{}

// Do - invokes HTTP request
func (h *HTTPAPI) Do(req *http.Request) (*http.Response, error) {
	if h.DoFunc != nil {
		return h.DoFunc(req)
	} else if h.client != nil {
		return h.client.Do(req)
	}

	return nil, fmt.Errorf("no way to fulfill request")
}

// NewHTTPAPI returns a new HTTPAPI
func NewHTTPAPI() *HTTPAPI {
	return &HTTPAPI{client: &http.Client{Timeout: DefaultHTTPTimeout}, DoFunc: nil}
}

// SetTransport - sets HTTP transport
func (h *HTTPAPI) SetTransport(transport *http.Transport) {
	h.client = &http.Client{Transport: transport, Timeout: DefaultHTTPTimeout}
}

func methodURL(endpoint string, method string) (*url.URL, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("empty endpoint")
	}

	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}

	u, err := url.Parse(fmt.Sprintf("%s/%s", strings.TrimRight(endpoint, "/"), method))
	if err != nil {
		return nil, fmt.Errorf("invalid url %s", err)
	}

	return u, nil
}

// Call POSTs params as a form to endpoint/method and decodes the JSON reply into reply
func (h *HTTPAPI) Call(ctx context.Context, node *entities.Node, method string, params map[string]string, reply any) error {
	if node == nil {
		return &ConfigError{Op: method, Reason: "no node"}
	}

	u, err := methodURL(node.Endpoint, method)
	if err != nil {
		return &ConfigError{Op: method, Reason: fmt.Sprintf("node %s: %v", node.Name, err)}
	}

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("invalid request %v", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("", node.Password)

	resp, err := h.Do(req)
	if err != nil {
		return fmt.Errorf("http request %s to %s failed %w", method, node.Name, err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("http read %s from %s failed %w", method, node.Name, err)
	}

	if resp.StatusCode != http.StatusOK {
		var eclairErr EclairError
		if json.Unmarshal(body, &eclairErr) == nil && eclairErr.Error != "" {
			return fmt.Errorf("%s on %s: %s", method, node.Name, eclairErr.Error)
		}

		return fmt.Errorf("http got error %d for %s on %s", resp.StatusCode, method, node.Name)
	}

	if reply == nil {
		return nil
	}

	err = json.Unmarshal(body, reply)
	if err != nil {
		return fmt.Errorf("decode error %v", err)
	}

	return nil
}
