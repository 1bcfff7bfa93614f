// Package k8s wraps the Kubernetes operations the provisioning graph needs:
// namespaces, secrets, config maps and Service address discovery.
//
// Every mutating call is idempotent and returns an ObjectRef, a plain value
// describing the object by kind, namespace, name and UID. No client-go object
// escapes the package.
package k8s
