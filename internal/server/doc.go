// Package server hosts the Fiber HTTP service and the middleware chain every
// route shares: request ids, access logging and metrics, panic recovery, and
// the JSON body parser. It also owns the error envelope and the explicit
// catch-all fallback. Route handlers live in server/routes and read parsed
// bodies through Body, so keep exports narrow and accept explicit
// dependencies.
package server
