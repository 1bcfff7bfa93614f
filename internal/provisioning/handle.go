package provisioning

import (
	"fmt"
	"sort"
)

// Kind names the type of resource a node manages.
type Kind string

const (
	KindPassword  Kind = "password"
	KindNamespace Kind = "namespace"
	KindSecret    Kind = "secret"
	KindConfigMap Kind = "configmap"
	KindRelease   Kind = "release"
	KindEndpoint  Kind = "endpoint"
	KindRole      Kind = "role"
	KindDatabase  Kind = "database"
	KindGrant     Kind = "grant"
)

// Handle is the result of a completed node. ID is an opaque external
// identifier such as a Kubernetes UID or a Helm release revision. Secrets
// hold sensitive outputs and are never logged or rendered.
type Handle struct {
	Kind    Kind
	ID      string
	Outputs map[string]string
	Secrets map[string]string
}

// Output returns a plain output, or "" if it is not set.
func (h Handle) Output(key string) string {
	return h.Outputs[key]
}

// Secret returns a sensitive output, or "" if it is not set.
func (h Handle) Secret(key string) string {
	return h.Secrets[key]
}

// Clone returns a deep copy of h.
func (h Handle) Clone() Handle {
	return Handle{
		Kind:    h.Kind,
		ID:      h.ID,
		Outputs: cloneMap(h.Outputs),
		Secrets: cloneMap(h.Secrets),
	}
}

// OutputKeys returns the output keys in sorted order.
func (h Handle) OutputKeys() []string {
	keys := make([]string, 0, len(h.Outputs))
	for k := range h.Outputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Inputs holds the handles of a node's producers, keyed by node ID.
type Inputs map[string]Handle

// Get returns the handle of producer id. It fails if the node did not
// declare id as a dependency.
func (in Inputs) Get(id string) (Handle, error) {
	h, ok := in[id]
	if !ok {
		return Handle{}, fmt.Errorf("input %s is not a declared dependency", id)
	}
	return h, nil
}

// Output returns one plain output of producer id.
func (in Inputs) Output(id, key string) (string, error) {
	h, err := in.Get(id)
	if err != nil {
		return "", err
	}
	v, ok := h.Outputs[key]
	if !ok {
		return "", fmt.Errorf("input %s has no output %q", id, key)
	}
	return v, nil
}

// Secret returns one sensitive output of producer id.
func (in Inputs) Secret(id, key string) (string, error) {
	h, err := in.Get(id)
	if err != nil {
		return "", err
	}
	v, ok := h.Secrets[key]
	if !ok {
		return "", fmt.Errorf("input %s has no secret %q", id, key)
	}
	return v, nil
}
