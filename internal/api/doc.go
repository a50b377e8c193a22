// Package api exposes the gateway over HTTP: passcode-based
// authentication under /auth and per-user file operations under /files,
// behind bearer-token middleware. Handlers translate domain errors into
// the wire taxonomy: validation failures carry a rule code with 400,
// authentication failures map to 401, missing objects to 404, and
// backend faults to an opaque 500 with details only logged.
package api
