package artgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"

	"golang.org/x/oauth2"
)

// defaultContentType is assumed when the provider omits Content-Type.
const defaultContentType = "image/png"

// maxErrorBody caps how much of a failed response is kept for logs.
const maxErrorBody = 512

// provider calls the text-to-image inference endpoint. The bearer header
// is added by the oauth2 transport.
type provider struct {
	url    string
	client *http.Client
}

func newProvider(url, token string, base *http.Client) *provider {
	ctx := context.Background()
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})

	return &provider{
		url:    url,
		client: oauth2.NewClient(ctx, ts),
	}
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

// generate returns the image bytes and their content type. Every error is
// an *Error.
func (p *provider) generate(ctx context.Context, prompt string) (string, []byte, error) {
	payload, err := json.Marshal(inferenceRequest{Inputs: prompt})
	if err != nil {
		return "", nil, generationFailure(fmt.Errorf("encoding request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return "", nil, generationFailure(fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/*")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		cause := fmt.Errorf("provider returned %s: %s", resp.Status, bytes.TrimSpace(snippet))
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return "", nil, authFailure(cause)
		case http.StatusTooManyRequests:
			return "", nil, rateLimited(cause)
		default:
			return "", nil, generationFailure(cause)
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, classifyTransportError(fmt.Errorf("reading image: %w", err))
	}
	if len(data) == 0 {
		return "", nil, generationFailure(errors.New("provider returned an empty image"))
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}

	return contentType, data, nil
}

// classifyTransportError separates "could not reach the provider" from
// every other failure.
func classifyTransportError(err error) *Error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return connectivityFailure(err)
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return connectivityFailure(err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return connectivityFailure(err)
	}

	return generationFailure(err)
}
