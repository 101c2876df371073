package api

// TokensResponse from GET /tokens
type TokensResponse struct {
	Tokens []APIToken `json:"tokens"`
	Cursor string     `json:"cursor"`
}

// SingleTokenResponse from GET /tokens/{id}
type SingleTokenResponse struct {
	Token APIToken `json:"token"`
}

// APIToken represents a token as returned by the listing service.
type APIToken struct {
	ID          string `json:"id"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	PairAddress string `json:"pair_address"`
	Category    string `json:"category"`

	// Decimal strings
	Price         string `json:"price"`
	PreviousPrice string `json:"previous_price"`
	Volume24h     string `json:"volume_24h"`
	MarketCap     string `json:"market_cap"`
	Liquidity     string `json:"liquidity"`

	// ISO 8601
	CreatedTime string `json:"created_time"`
}

// GetTokensOptions configures a GetTokens request.
type GetTokensOptions struct {
	Limit    int
	Cursor   string
	Category string
}
