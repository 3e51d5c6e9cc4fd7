// Package recordapi serves a backend.Backend over HTTP.
//
// Routes:
//
//	GET    /collections/{collection}/records           read all records
//	POST   /collections/{collection}/records           create {"records": [...]}
//	PUT    /collections/{collection}/records           update {"records": [...]}
//	DELETE /collections/{collection}/records?id=...    destroy
//	GET    /ws                                         websocket request frames
//	GET    /healthz                                    liveness
//	GET    /metrics                                    when WithMetricsHandler is set
//
// Every route answers with the collection.Response envelope
// {"success": bool, "message": string, "records": [...]}. Rejected writes use
// status 422 so clients can tell them from transport failures.
package recordapi
