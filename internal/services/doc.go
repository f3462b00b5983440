// Package services implements catalog clients for SoundCloud.
//
// # Search
//
// [SoundCloudService] implements [Searcher] with a single GET /tracks?q= request per
// source track, authenticated with the user's bearer token. The query is the artist, a
// space, then the title, with double quotes stripped.
//
// Search never fails a batch. A missing token or a failed request produces an empty
// candidate list together with a [*SearchError]:
//   - Unauthenticated : no access token was supplied; no request is made
//   - RequestFailed : non-2xx status, transport error, timeout, or undecodable body
//
// [IsSoft] reports whether an error is one of these. [SearchError] unwraps to
// [shared.ErrNotAuthenticated] or [shared.ErrAPIRequest].
//
// # Raw Requests
//
// [APIService] issues unparsed GET requests with the same bearer token, for inspecting responses from the CLI.
package services
