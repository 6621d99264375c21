// Package server provides the HTTP API behind `chordx serve`.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [NewRouter] installs [Recover], [Logging], [RateLimit] and [LimitBody] ahead of every handler.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns, so path wildcards such as
// /songs/{ref} are available through [http.Request.PathValue].
//
// GET / answers with the registered routes and GET /health with {"status": "ok"}.
//
// # Chart Endpoints
//
// [ChartHandler] works on a chart sent as the request body and keeps no state:
//
//	POST /detect                  {"format": "..."}
//	POST /convert?to=&transpose=  the chart in another format
//	POST /transpose?by=&to=       the chart in another key, same format unless to is set
//	POST /key                     detected and declared key
//	POST /chart?width=&markdown=  chords-over-lyrics text or Markdown
//
// Transposition values are +N, -N or a key name. A literal "+" must be sent as %2B.
//
// # Library Endpoints
//
// [LibraryHandler] is registered only when a [Library] is supplied:
//
//	GET  /songs?q=&artist=&key=&limit=
//	POST /songs?name=&title=&artist=
//	GET  /songs/{ref}
//	GET  /songs/{ref}/chart
//	GET  /songs/{ref}/export?to=
//	POST /songs/{ref}/transpose?by=
//	POST /songs/{ref}/reset
//
// Errors are JSON bodies of the form {"error": "..."}, with status codes derived from the domain error.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
