// Package airtable implements a record source for Airtable-compatible
// tabular REST APIs.
//
// # Architecture
//
// The connector follows the driven port pattern defined in [driven.RecordSource].
// It comprises the following components:
//
//   - Client: lists table pages with bearer authentication and throttling
//   - Factory: builds a Client per sync invocation from a supplied token
//   - RateLimiter: proactive token bucket plus Retry-After backoff
//
// # Pagination
//
// A listing is requested as
//
//	GET {base}/{baseId}/{urlEncodedTable}[?offset={cursor}]
//
// and answered with {"records": [...], "offset": "..."}. The offset is an
// opaque continuation token. Its absence is the only termination signal;
// page size is never used to infer the end of a listing. Because every
// request depends on the previous response's cursor, pages are fetched
// strictly in sequence and exposed lazily as an iter.Seq2.
//
// The loop itself is unbounded. Callers bound it with a context deadline
// and optionally with [WithMaxPages].
//
// # Error Handling
//
// Any non-2xx response aborts the listing with a [domain.SourceFetchError]
// wrapping an [APIError]. The message is taken from the response body
// ({"error": {"message": ...}} or {"error": "CODE"}) and falls back to the
// HTTP status text. Transport failures abort the same way with status 0.
// Partial accumulations are discarded by FetchAll.
//
// # Rate Limiting
//
// Airtable allows 5 requests per second per base and imposes a 30 second
// penalty after a 429. The client throttles proactively and honours
// Retry-After on subsequent invocations sharing the same limiter, but it
// never retries within an invocation.
//
// # Example Usage
//
//	client := airtable.NewClient(token, airtable.WithRequestTimeout(30*time.Second))
//	records, err := client.FetchAll(ctx, driven.SourceQuery{BaseID: "app123", Table: "Leads"})
package airtable
