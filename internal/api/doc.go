// Package api provides the HTTP client for a remote token listing service.
//
// Endpoints:
//   - GET /tokens?limit=&cursor=&category=   paginated token list
//   - GET /tokens/{id}                       single token
//
// Prices and market figures are transmitted as decimal strings and
// converted to float64 on the way into the model. The Client satisfies
// provider.Provider, so it can stand in for the mock batch generator.
package api
