// Package tasks drives the reconciliation of an import against the SoundCloud catalog with real-time progress reporting.
//
// # Paging
//
// [Driver.RunPage] slices the ordered track list into tracks[(p-1)*size : p*size] and,
// strictly one track at a time, searches then classifies each one. Results land in two
// ordered batches: matched, and unmatched (needs_review or no_match).
//
// A track whose search fails with a hard error, or whose search or classification
// panics, becomes no_match in the unmatched batch and is recorded in
// [PageResult.Failures]. Soft search errors (see services.IsSoft) simply mean no candidates.
//
// [HasMore] reports whether page*size < total.
//
// # Sessions
//
// [Session] owns the tracks, the page cursor, the accumulated [matcher.Board], and the
// access token. [Session.NextPage] runs the current page, merges it into the board, and
// advances the cursor; [Session.RunAll] repeats until no pages remain.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Export
//
// [ExportBoard] writes a board in several formats with a JSON manifest.
package tasks
