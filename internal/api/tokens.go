package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rickgao/tokenscope/internal/model"
	"github.com/rickgao/tokenscope/internal/provider"
)

// maxPageSize is the largest page the listing service accepts.
const maxPageSize = 500

// GetTokens fetches a page of tokens.
func (c *Client) GetTokens(ctx context.Context, opts GetTokensOptions) (*TokensResponse, error) {
	query := url.Values{}

	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}
	if opts.Category != "" {
		query.Set("category", opts.Category)
	}

	var resp TokensResponse
	if err := c.get(ctx, "/tokens", query, &resp); err != nil {
		return nil, fmt.Errorf("get tokens: %w", err)
	}

	return &resp, nil
}

// GetAllTokens fetches all tokens by paginating through results.
func (c *Client) GetAllTokens(ctx context.Context) ([]APIToken, error) {
	var all []APIToken
	opts := GetTokensOptions{Limit: maxPageSize}

	for {
		resp, err := c.GetTokens(ctx, opts)
		if err != nil {
			return nil, err
		}

		all = append(all, resp.Tokens...)

		if resp.Cursor == "" {
			break
		}
		opts.Cursor = resp.Cursor
	}

	return all, nil
}

// GetToken fetches a single token by id.
func (c *Client) GetToken(ctx context.Context, id string) (*APIToken, error) {
	var resp SingleTokenResponse
	if err := c.get(ctx, "/tokens/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, fmt.Errorf("get token %s: %w", id, err)
	}
	return &resp.Token, nil
}

// Fetch returns the full token list converted to the model. Any failure,
// including a malformed token, is reported as a *provider.FetchError.
func (c *Client) Fetch(ctx context.Context) ([]model.Token, error) {
	raw, err := c.GetAllTokens(ctx)
	if err != nil {
		return nil, &provider.FetchError{Source: "api", Err: err}
	}

	tokens := make([]model.Token, 0, len(raw))
	for i := range raw {
		tok, err := raw[i].ToModel()
		if err != nil {
			return nil, &provider.FetchError{Source: "api", Err: err}
		}
		tokens = append(tokens, tok)
	}

	c.logger.Debug("fetched tokens", "count", len(tokens))
	return tokens, nil
}
