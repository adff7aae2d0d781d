// Package handlers wires the HTTP API to the service layer: browsing,
// streaming, downloads, folder archives, previews, subtitles, file
// management, and the health and version endpoints. Handlers translate
// service errors to JSON envelopes and never expose filesystem paths to
// clients.
package handlers
