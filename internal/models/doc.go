// Package models defines the domain entities shared by the shazcloud packages.
//
// The package contains three groups of types:
//
// 1. Import records: tracks decoded from a Shazam export
//   - [SourceTrack] : One row of the recognition CSV, keyed by TrackKey
//
// 2. Catalog records: search results from SoundCloud
//   - [CandidateTrack] : One search hit, compared by normalized title and artist
//   - [MatchResult] : A source track classified against its candidates
//
// 3. Flow state: transient values that never touch durable storage
//   - [AuthSession] : PKCE verifier and the token pair from an authorization
//   - [PageCursor] : 1-based page number and size used to slice an import
package models
