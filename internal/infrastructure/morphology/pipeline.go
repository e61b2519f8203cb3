package morphology

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ersonp/drama-core/internal/domain/ports"
)

// PipelineAnalyzer calls an external tagging service:
//
//	POST {url}/analyze {"text": "...", "model": "de_core_news_sm"}
//	-> {"tokens": [{"text": "...", "lemma": "...", "pos": "..."}]}
type PipelineAnalyzer struct {
	endpoint string
	model    string
	client   *http.Client
}

var _ ports.Analyzer = (*PipelineAnalyzer)(nil)

type analyzeRequest struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

type analyzeResponse struct {
	Tokens []Token `json:"tokens"`
}

// NewPipelineAnalyzer creates a client for the given service and model.
func NewPipelineAnalyzer(baseURL, model string, timeout time.Duration) (*PipelineAnalyzer, error) {
	if baseURL == "" {
		return nil, errors.New("pipeline url is required")
	}
	if model == "" {
		return nil, errors.New("pipeline model is required")
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &PipelineAnalyzer{
		endpoint: strings.TrimRight(baseURL, "/") + "/analyze",
		model:    model,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// Lemmatize returns the lemma of every token of text.
func (p *PipelineAnalyzer) Lemmatize(ctx context.Context, text string) ([]string, error) {
	tokens, err := p.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}
	lemmas := make([]string, len(tokens))
	for i, t := range tokens {
		lemmas[i] = t.Lemma
	}
	return lemmas, nil
}

// Tag returns the part-of-speech tag of every token of text.
func (p *PipelineAnalyzer) Tag(ctx context.Context, text string) ([]string, error) {
	tokens, err := p.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}
	tags := make([]string, len(tokens))
	for i, t := range tokens {
		tags[i] = t.POS
	}
	return tags, nil
}

// Analyze sends text to the service and returns its tokens.
func (p *PipelineAnalyzer) Analyze(ctx context.Context, text string) ([]Token, error) {
	if strings.TrimSpace(text) == "" {
		return []Token{}, nil
	}

	body, err := json.Marshal(analyzeRequest{Text: text, Model: p.model})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling pipeline %s: %w", p.model, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("pipeline %s: HTTP %d: %s", p.model, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding pipeline response: %w", err)
	}
	if out.Tokens == nil {
		out.Tokens = []Token{}
	}
	return out.Tokens, nil
}
