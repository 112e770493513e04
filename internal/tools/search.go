package tools

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/tools/duckduckgo"
)

// WebSearch answers search_web steps through DuckDuckGo.
type WebSearch struct {
	client *duckduckgo.Tool
}

func NewWebSearch(maxResults int) (*WebSearch, error) {
	if maxResults <= 0 {
		maxResults = 10
	}
	ddg, err := duckduckgo.New(maxResults, duckduckgo.DefaultUserAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to create search client: %w", err)
	}
	return &WebSearch{client: ddg}, nil
}

func (s *WebSearch) Search(ctx context.Context, query string) (string, error) {
	res, err := s.client.Call(ctx, query)
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}
	return res, nil
}
