// Package immich is the HTTP client for the photo server's library, asset, and
// album endpoints.
//
// The Service interface covers exactly the operations the sync workflow needs;
// the HTTP implementation keeps transport injectable (HTTPDoer) so tests can
// run against canned responses. Server errors are surfaced as *APIError values
// carrying the HTTP status and the server-provided message, which the
// reconciler reports per bin without aborting the run.
package immich
