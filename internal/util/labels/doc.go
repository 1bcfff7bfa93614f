// Package labels provides consistent labeling for Kubernetes objects created
// by tcstack.
//
// Labels combine the recommended app.kubernetes.io keys with tcstack.io keys
// that identify the stack, the TeamCity instance and the component. A
// builder pattern keeps label sets uniform across namespaces, secrets and
// config maps.
package labels
