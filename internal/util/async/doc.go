// Package async provides utilities for running independent checks in
// parallel with error collection.
//
// [RunParallel] executes named tasks concurrently and joins every failure
// into one error. It backs the preflight checks run before a graph executes.
package async
