// Package client implements a typed HTTP client for the tier proof API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"go.vocdoni.io/dvote/log"

	"github.com/proofoflove/zktier/api"
)

const (
	// HTTPGET is the method string used for calling Request()
	HTTPGET = http.MethodGet
	// HTTPPOST is the method string used for calling Request()
	HTTPPOST = http.MethodPost
	// HTTPDELETE is the method string used for calling Request()
	HTTPDELETE = http.MethodDelete

	errCodeNot200 = "API error"

	// DefaultRetries this enables Request() to handle the situation where the server connection fails
	DefaultRetries = 3
	// DefaultTimeout is the default timeout for the HTTP client. Proof
	// generation can take a while, so it is generous.
	DefaultTimeout = 60 * time.Second
)

// HTTPclient is the tier proof API HTTP client.
type HTTPclient struct {
	c       *http.Client
	host    *url.URL
	retries int
}

// New connects to the API host, checks it is alive and returns the handle.
func New(host string) (*HTTPclient, error) {
	hostURL, err := url.Parse(host)
	if err != nil {
		return nil, err
	}
	c := &HTTPclient{
		c:       &http.Client{Timeout: DefaultTimeout},
		host:    hostURL,
		retries: DefaultRetries,
	}
	log.Debugw("http client created", "host", hostURL.String())
	data, status, err := c.Request(HTTPGET, nil, api.PingEndpoint)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%s: %d (%s)", errCodeNot200, status, data)
	}
	return c, nil
}

// SetRetries configures the number of retries for the HTTP client.
func (c *HTTPclient) SetRetries(n int) {
	c.retries = n
}

// SetTimeout configures the timeout for the HTTP client.
func (c *HTTPclient) SetTimeout(d time.Duration) {
	c.c.Timeout = d
}

// GenerateProof requests a tier proof for a balance snapshot triple.
func (c *HTTPclient) GenerateProof(req *api.ProofRequest) (*api.ProofResponse, error) {
	resp := &api.ProofResponse{}
	return resp, c.call(HTTPPOST, req, resp, api.ProofsEndpoint)
}

// VerifyProof runs the off-chain verification of a proof against a declared
// tier number.
func (c *HTTPclient) VerifyProof(req *api.VerifyRequest) (*api.VerifyResponse, error) {
	resp := &api.VerifyResponse{}
	return resp, c.call(HTTPPOST, req, resp, api.VerifyEndpoint)
}

// Credential fetches the badge record stored for an identity.
func (c *HTTPclient) Credential(identity string) (*api.CredentialResponse, error) {
	resp := &api.CredentialResponse{}
	return resp, c.call(HTTPGET, nil, resp, "credentials", identity)
}

// SubmitCredential submits a proof to the credential ledger for an identity.
func (c *HTTPclient) SubmitCredential(identity string, proof *api.CredentialSubmission) (*api.CredentialResponse, error) {
	resp := &api.CredentialResponse{}
	return resp, c.call(HTTPPOST, proof, resp, "credentials", identity)
}

// RevokeCredential deletes an expired badge record.
func (c *HTTPclient) RevokeCredential(identity string) error {
	_, status, err := c.Request(HTTPDELETE, nil, "credentials", identity)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%s: %d", errCodeNot200, status)
	}
	return nil
}

// call performs a request and decodes a 200 JSON response into out; any other
// status is returned as an error carrying the response body.
func (c *HTTPclient) call(method string, jsonBody, out any, urlPath ...string) error {
	data, status, err := c.Request(method, jsonBody, urlPath...)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%s: %d (%s)", errCodeNot200, status, bytes.TrimSpace(data))
	}
	return json.Unmarshal(data, out)
}

// Request performs a `method` type raw request to the endpoint specified in
// urlPath parameter. If a JSON body is provided it is attached to the
// request. Returns the response body, the status code and an error.
func (c *HTTPclient) Request(method string, jsonBody any, urlPath ...string) ([]byte, int, error) {
	var (
		body []byte
		err  error
	)
	if jsonBody != nil {
		body, err = json.Marshal(jsonBody)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal JSON: %w", err)
		}
	}

	u, err := url.Parse(c.host.String())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse host URL: %w", err)
	}
	u.Path = path.Join(u.Path, path.Join(urlPath...))

	headers := http.Header{}
	if jsonBody != nil {
		headers.Set("Content-Type", "application/json")
		headers.Set("Accept", "application/json")
	}
	log.Debugw("http client request", "type", method, "url", u.String())

	var resp *http.Response
	for i := 1; i <= c.retries; i++ {
		// Create a fresh request each attempt
		var reqBody io.ReadCloser
		if body != nil {
			reqBody = io.NopCloser(bytes.NewReader(body))
		}
		req, err := http.NewRequest(method, u.String(), reqBody)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header = headers

		resp, err = c.c.Do(req)
		if err != nil {
			log.Warnw("http request failed", "error", err.Error(), "attempt", i, "retries", c.retries)
			time.Sleep(500 * time.Millisecond)
			continue
		}
		break
	}
	if resp == nil {
		return nil, 0, fmt.Errorf("http request ultimately failed after retries")
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Warnw("failed to close response body", "error", err.Error())
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, resp.StatusCode, nil
}
