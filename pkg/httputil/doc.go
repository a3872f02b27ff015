// Package httputil holds the retry helper used by HTTP-backed stores.
//
// Persistence collaborators that talk to a remote service mark transient
// failures (network errors, 5xx responses) with [Retryable] and run each
// request through [Retry]:
//
//	err := httputil.Retry(ctx, 3, 200*time.Millisecond, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// Errors that are not marked are returned immediately. The editor core
// never retries on its own; retrying is a store decision.
package httputil
