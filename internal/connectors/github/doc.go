// Package github fetches the text files of a GitHub repository.
//
// The fetcher walks the repository through the contents API
// (GET /repos/{owner}/{repo}/contents/{path}): one request per directory
// and one per file, recursing into directories. File content arrives
// base64 encoded and is decoded before use. Files that do not decode to
// UTF-8 text (binary blobs, files over the API's 1MB inline limit) are
// skipped and logged; they never abort the walk.
//
// # Authentication
//
// A personal access token, when supplied, is sent as a bearer credential
// through an oauth2 static token source. Without one the walk is
// unauthenticated and limited to public repositories and 60 requests per
// hour.
//
// # Errors
//
// Every failure is a *domain.FetchError:
//
//   - 404: ResourceNotFound, reason private-or-missing without a token and
//     empty with one
//   - 401, 403 and rate limiting: AccessDenied carrying the response body
//   - transport failures: NetworkFailure
//   - anything else: UnexpectedStatus
//
// Nothing is retried.
//
// # Rate Limiting
//
// An optional token bucket throttles requests client-side. The
// X-RateLimit-* headers are tracked; once GitHub reports an exhausted
// quota, further requests fail fast until the reset time.
//
// # Example Usage
//
//	fetcher := github.NewFetcher(github.Config{})
//	files, err := fetcher.FetchRepository(ctx, "owner/name", token)
package github
