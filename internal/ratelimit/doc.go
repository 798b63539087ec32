// Package ratelimit implements a token bucket used to throttle
// outbound requests to the Donetick API.
//
// A bucket starts full and refills continuously at a fixed rate up to
// its capacity, so callers may burst up to the capacity while the
// long-run rate never exceeds the refill rate. One bucket is shared by
// all requests issued through a single donetick.Client.
package ratelimit
