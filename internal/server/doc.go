// Package server provides the recipebox HTTP API: routing, middleware and JSON handlers.
//
// # Router
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter]
// implements it on gorilla/mux, matching on method as well as path. [Middleware] wraps
// handlers in reverse order (last added executes first).
//
// A [Handler] groups the [Route]s of one resource so it can be registered in one call.
//
// # Identity
//
// [Authenticate] reads "Authorization: Bearer <token>" and stores the verified identity in
// the request context. Requests without the header continue anonymously and the recipe
// repository decides what an anonymous caller may do: reads come back empty, writes fail
// with 401.
//
// # Errors
//
// Failures are answered as {"error": "...", "title": "..."} with the status from [StatusFor]:
// 400 for invalid input, 401 for missing or rejected credentials, 404 for recipes that do not
// exist or belong to someone else, 409 for duplicate accounts and 502 when the data service fails.
package server
