// Package config defines the configuration model for a tcstack deployment.
//
// The [Config] struct is the canonical representation of the desired state:
// the shared PostgreSQL server, the list of TeamCity instances, the optional
// Nginx proxy and where generated passwords are persisted. It is loaded from
// tcstack.yaml (or a .toml file), completed by [Config.ApplyDefaults] and
// checked by [Config.Validate].
package config
