// Package github is the HTTP client for the template release API. It fetches
// release metadata, validates it against a schema before trusting it, tracks
// rate-limit headers, and streams asset downloads to disk with progress
// reporting. Transient failures (timeouts, 5xx, 429) are retried with
// exponential backoff inside the client; everything else surfaces as a typed
// error the installer can map to user guidance.
package github
