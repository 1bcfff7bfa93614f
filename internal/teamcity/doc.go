// Package teamcity builds the provisioning graph for a TeamCity fleet: one
// shared PostgreSQL server, one TeamCity server with its own role and
// database per instance, and an optional Nginx proxy in front of them.
//
// Fleet turns a validated config.Config into a provisioning.Graph whose
// nodes call the Kubernetes, Helm, PostgreSQL and password-store clients
// supplied in Deps. The same fleet also yields the reverse graph used by
// destroy, and a static rendering of every object and Helm values tree.
package teamcity
