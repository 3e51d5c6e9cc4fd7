// Package proxy provides collection.Proxy implementations.
//
//   - Direct calls a backend.Backend in process (memory or S3).
//   - HTTP speaks JSON to the record API's REST routes.
//   - WebSocket sends request frames over one persistent connection.
//
// All proxies return a *collection.Response for backend-level outcomes
// (including rejected writes) and an error only when the request could not be
// carried out at all.
package proxy
