// Package streaming implements HTTP byte-range delivery of library files.
//
// The pipeline has three layers. ParseRange interprets a Range header
// against a known file size into a validated inclusive byte interval,
// capping open-ended requests at MaxChunkSize so a seek to the middle of a
// large file never commits the server to streaming the rest of it. Source is
// a buffered reader bounded to such an interval: it seeks once at
// construction, reads through a fixed 1 MiB buffer, and yields exactly the
// interval's bytes before EOF, regardless of concurrent file growth. Engine
// orchestrates the two behind the sandbox resolver and writes complete
// 200/206/400/404/416 responses.
//
// Delivery goes through TimeoutWriter, which bounds individual writes and
// idle gaps so a stalled client cannot pin a file handle. Disconnects
// mid-stream are expected (players seek by aborting and re-requesting) and
// are never retried server-side.
package streaming
