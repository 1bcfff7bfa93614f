// Package password generates random passwords and keeps them stable.
//
// A password is generated once per logical name and persisted in a state
// backend (a local YAML file or an object in an S3-compatible bucket). Every
// later request for the same name returns the stored value, even when the
// requested Policy has changed since.
package password
