// Package backend provides record storage used behind proxies and the record API.
//
// A Backend stores records per collection. Memory keeps them in process and is
// what tests and the development server use; S3 keeps one JSON object per
// record in a bucket:
//
//	<prefix><collection>/<id>.json
//
// Apply executes a collection.Request against any Backend and produces the
// collection.Response the proxies and the HTTP/websocket handlers return.
package backend
