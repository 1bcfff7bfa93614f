// Package retry provides exponential backoff retry logic for waiting on
// asynchronous readiness.
//
// [WithExponentialBackoff] retries an operation with configurable max attempts,
// initial delay and maximum delay. It is used while waiting for a Service to
// receive a LoadBalancer address and for PostgreSQL to accept connections.
package retry
