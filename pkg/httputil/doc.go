// Package httputil provides HTTP helpers shared by the backend client.
//
// [Retry] re-runs an operation with exponential backoff when it fails with a
// [RetryableError]. Callers decide what is transient: the backend client
// marks connection failures and 5xx/429 responses retryable, so malformed
// responses and 4xx errors fail fast.
//
//	err := httputil.Retry(ctx, 3, 200*time.Millisecond, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
package httputil
