package httputil

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/leadstream-dev/go-leadstream/internal/config"
)

// LLMHTTPAdapter оборачивает resty-клиент в интерфейс HTTPDoer,
// который принимает клиент go-openai.
type LLMHTTPAdapter struct {
	restyClient *resty.Client
}

func NewLLMHTTPAdapter(restyClient *resty.Client) *LLMHTTPAdapter {
	return &LLMHTTPAdapter{
		restyClient: restyClient,
	}
}

func (a *LLMHTTPAdapter) Do(req *http.Request) (*http.Response, error) {
	restyReq := a.restyClient.R()

	for key, values := range req.Header {
		for _, value := range values {
			restyReq.SetHeader(key, value)
		}
	}

	if req.Context() != nil {
		restyReq.SetContext(req.Context())
	}

	if req.Body != nil {
		restyReq.SetBody(req.Body)
	}

	resp, err := restyReq.Execute(req.Method, req.URL.String())
	if err != nil {
		return nil, err
	}

	httpResp := resp.RawResponse
	if httpResp != nil {
		httpResp.Body = io.NopCloser(bytes.NewReader(resp.Body()))
	}

	return httpResp, nil
}

func (a *LLMHTTPAdapter) RoundTrip(req *http.Request) (*http.Response, error) {
	return a.Do(req)
}

func CreateResilientLLMClient(cfg *config.Config, logger *slog.Logger, serviceName string) *LLMHTTPAdapter {
	restyClient := CreateResilientHTTPClient(cfg, logger, serviceName)
	return NewLLMHTTPAdapter(restyClient)
}
