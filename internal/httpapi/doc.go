// Package httpapi exposes document generation over HTTP.
//
// Routes:
//
//	POST /documents/generate?stream=true|false
//	GET  /documents/templates
//	GET  /documents/health
//	GET  /metrics
//
// Errors are reported as JSON bodies of the form
// {"statusCode": 404, "message": "...", "error": "Not Found"}. Request body
// validation failures carry a list of messages instead of a single string.
package httpapi
