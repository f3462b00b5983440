// Package repositories implements SQLite persistence for shazcloud.
//
// [VerifierRepository] keeps PKCE verifiers between the authorization redirect and
// the callback for `shazcloud serve` when store.driver is "sqlite". Rows are keyed by
// the OAuth state, deleted when redeemed, and purged once expired.
package repositories
