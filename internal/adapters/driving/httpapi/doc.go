// Package httpapi exposes sync invocations over HTTP with gin.
//
// Routes:
//
//	POST|GET /sync/:table   run one sync invocation for a table mapping
//	GET      /test-secrets  report which configuration values are present
//	GET      /healthz       liveness
//	OPTIONS  /*             CORS preflight, answered with "ok"
//
// Every response carries permissive CORS headers. Failures are returned as
// {"error": "..."} with a status chosen by StatusFor.
package httpapi
