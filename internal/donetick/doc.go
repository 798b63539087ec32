// Package donetick provides a client for the Donetick external API
// (eAPI).
//
// The client wraps every operation in a shared request pipeline:
// a token-bucket rate limiter gates admission, then a bounded retry
// loop issues the HTTP call and classifies failures. Server errors
// (5xx) and transport timeouts are retried with jittered exponential
// backoff; HTTP 429 honours the server's Retry-After; all other 4xx
// responses fail fast. Each transport call consumes one rate limiter
// token and counts against the per-request retry budget.
//
// Callers observe either a parsed success value or a typed error:
// ClientError, ServerError, TimeoutError, RateLimitedError or, once
// the retry budget is spent, RetriesExhaustedError wrapping the final
// attempt's classification.
//
// Authentication uses a static access token sent in the secretkey
// header, generated in Donetick under Settings > Access Token.
//
// Example usage:
//
//	client, err := donetick.New(donetick.Options{
//	    BaseURL:  "https://donetick.example.com",
//	    APIToken: token,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	chores, err := client.ListChores(ctx, donetick.ListChoresOptions{})
//	if err != nil {
//	    var exhausted *donetick.RetriesExhaustedError
//	    if errors.As(err, &exhausted) {
//	        // upstream was unavailable for the whole retry budget
//	    }
//	}
package donetick
