// Package llm ranks aggregated book candidates with a language model.
// It is the "selection step" downstream of the catalog pipeline: the
// pipeline produces candidates, the model picks introductory and advanced
// recommendations from them.
package llm

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultOllamaModel = "qwen3:latest"
	defaultOpenAIModel = "gpt-4o-mini"
	defaultOpenAIBase  = "https://api.openai.com/v1"

	// Selections beyond this are discarded even if the model returns more.
	maxSelections = 6
)

const defaultLLMHTTPTimeout = 3 * time.Minute

// Selection categories, as the model must return them.
const (
	CategoryIntroductory = "入門"
	CategoryAdvanced     = "発展"
)

// Config describes how to build an LLM client.
type Config struct {
	Model      string
	Endpoint   string
	APIKey     string
	HTTPClient *http.Client
}

// CandidateBook is the slice of candidate metadata shown to the model.
// Index refers back into the caller's candidate list.
type CandidateBook struct {
	Index        int    `json:"index"`
	Title        string `json:"title"`
	Authors      string `json:"authors"`
	Publisher    string `json:"publisher"`
	Year         string `json:"year"`
	SearchIntent string `json:"searchIntent"`
}

// Selection is one recommendation picked by the model.
type Selection struct {
	Index    int    `json:"index"`
	Reason   string `json:"reason"`
	Category string `json:"category"`
}

// Client selects relevant books from a candidate list.
type Client interface {
	SelectBooks(ctx context.Context, bookTitle, summary string, candidates []CandidateBook) ([]Selection, error)
	Name() string
}

// NewFromEnv inspects configuration & environment variables to build a
// client: OpenAI when an API key is available, a local Ollama otherwise.
func NewFromEnv(cfg Config) (Client, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey != "" {
		model := cfg.Model
		if model == "" {
			model = defaultOpenAIModel
		}
		base := cfg.Endpoint
		if base == "" {
			base = defaultOpenAIBase
		}
		return &openAIClient{
			apiKey: apiKey,
			model:  model,
			base:   strings.TrimRight(base, "/"),
			client: pickHTTPClient(cfg.HTTPClient),
		}, nil
	}

	host := cfg.Endpoint
	if host == "" {
		if env := os.Getenv("OLLAMA_HOST"); env != "" {
			host = strings.TrimRight(env, "/")
		} else {
			host = "http://localhost:11434"
		}
	}
	model := cfg.Model
	if model == "" {
		if env := os.Getenv("OLLAMA_MODEL"); env != "" {
			model = env
		} else {
			model = defaultOllamaModel
		}
	}
	return &ollamaClient{
		host:   host,
		model:  model,
		client: pickHTTPClient(cfg.HTTPClient),
	}, nil
}

func pickHTTPClient(custom *http.Client) *http.Client {
	if custom != nil {
		return custom
	}
	// Allow longer-running generations and rely on the caller's context for cancellation.
	return &http.Client{Timeout: defaultLLMHTTPTimeout}
}
