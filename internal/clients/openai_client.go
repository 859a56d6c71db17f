package clients

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	openAIRequestTimeout = 60 * time.Second // Timeout for individual OpenAI API requests
)

type OpenAIClient struct {
	Client *openai.Client
}

// NewOpenAIClient builds a client with a bounded HTTP timeout. Extra options
// (base URL, retries) are applied after the defaults.
func NewOpenAIClient(apiKey string, opts ...option.RequestOption) *OpenAIClient {
	httpClient := &http.Client{
		Timeout: openAIRequestTimeout,
	}

	all := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
	}, opts...)

	slog.Info("[OpenAIClient] OpenAI client initialized with custom HTTP timeout",
		slog.Duration("timeout", openAIRequestTimeout))

	return &OpenAIClient{
		Client: openai.NewClient(all...),
	}
}
