// Package live serves a browser demo of the notifier over WebSocket.
//
// Every connection gets a Session with its own dom.Document and
// toast.Notifier. The session mirrors its document into the browser: DOM
// mutations become JSON patches, and the browser reports animationend and
// transitionend back so the notifier can advance. Hold timers run on the
// real clock and are dispatched onto the session's event loop.
//
// # Routes
//
//   - GET  /                  demo page
//   - GET  /ws                WebSocket endpoint
//   - POST /api/notify/{type} notify every connected session
//   - GET  /metrics           Prometheus metrics (when configured)
//   - GET  /healthz           liveness probe
//
// # Wire Format
//
// Server to client, one JSON object per text frame:
//
//	{"t":"init","root":"n1","html":"<ul ...></ul>"}
//	{"t":"patches","patches":[{"op":"insert","parent":"n2","before":"n7","html":"<li ...>"}]}
//	{"t":"error","code":"H061","message":"..."}
//
// Client to server:
//
//	{"t":"end","id":"n7","event":"animationend"}
//	{"t":"notify","type":"success","message":"Saved"}
//
// # Threading
//
// A session's document and notifier are touched only from its EventLoop
// goroutine. ReadLoop and timer callbacks hand work over with Dispatch.
package live
