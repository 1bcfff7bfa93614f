// Package handlers implements the business logic behind each CLI command.
//
// Handlers load the configuration, build the cluster clients and run the
// fleet graphs. Clients are created through package-level factory
// variables so tests can replace them.
package handlers
