// Package server provides HTTP routing, middleware, and the resolution API handlers.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [Logging] and [Recover] are the middleware every route runs behind.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Resolution Endpoints
//
// [CommandHandler] serves POST /api/v1/install and POST /api/v1/uninstall.
// Both accept a distribution slug plus application slugs and answer with a
// command plan. Applications that cannot be satisfied on the distribution
// surface as warnings and manual steps inside a 200 response; only an unknown
// distribution (404), rejected input (400), or a backend failure (500) produce
// error statuses. Error responses share one body shape: {"error": "..."}.
//
// # Health
//
// [HealthHandler] serves GET /api/v1/health with the applied schema version so
// probes catch a half-migrated database.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
