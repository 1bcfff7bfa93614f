package k8s

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// Client provides the Kubernetes operations used by provisioning nodes.
type Client interface {
	// EnsureNamespace creates the namespace if it does not exist. An existing
	// namespace is left untouched and its reference is returned.
	EnsureNamespace(ctx context.Context, name string, labels map[string]string) (ObjectRef, error)

	// DeleteNamespace deletes a namespace, returning nil if not found.
	DeleteNamespace(ctx context.Context, name string) error

	// ApplySecret creates the secret or replaces its data and labels.
	// Existing keys that are not part of secret are removed.
	ApplySecret(ctx context.Context, secret *corev1.Secret) (ObjectRef, error)

	// DeleteSecret deletes a secret, returning nil if not found.
	DeleteSecret(ctx context.Context, namespace, name string) error

	// ApplyConfigMap creates the config map or replaces its data and labels.
	ApplyConfigMap(ctx context.Context, cm *corev1.ConfigMap) (ObjectRef, error)

	// DeleteConfigMap deletes a config map, returning nil if not found.
	DeleteConfigMap(ctx context.Context, namespace, name string) error

	// ServiceAddress waits until a LoadBalancer Service reports an ingress
	// address and returns its IP or hostname.
	ServiceAddress(ctx context.Context, namespace, name string, timeout time.Duration) (string, error)

	// ServerVersion returns the API server's git version.
	ServerVersion(ctx context.Context) (string, error)
}

// ObjectRef identifies a Kubernetes object without exposing it.
type ObjectRef struct {
	Kind      string
	Namespace string
	Name      string
	UID       types.UID
}

// ID returns the UID, or namespace/name when the server did not assign one.
func (r ObjectRef) ID() string {
	if r.UID != "" {
		return string(r.UID)
	}
	if r.Namespace == "" {
		return r.Name
	}
	return r.Namespace + "/" + r.Name
}

const defaultPollInterval = 5 * time.Second

// client implements the Client interface using k8s.io/client-go.
type client struct {
	clientset    kubernetes.Interface
	pollInterval time.Duration
}

// NewFromKubeconfig creates a Client from kubeconfig bytes.
func NewFromKubeconfig(kubeconfig []byte) (Client, error) {
	restConfig, err := RESTConfig(kubeconfig)
	if err != nil {
		return nil, err
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}

	return NewFromClientset(clientset), nil
}

// NewFromClientset creates a Client from a pre-configured clientset.
// This is useful for testing with fake clients.
func NewFromClientset(clientset kubernetes.Interface) Client {
	return &client{
		clientset:    clientset,
		pollInterval: defaultPollInterval,
	}
}

// RESTConfig builds a REST config from kubeconfig bytes.
func RESTConfig(kubeconfig []byte) (*rest.Config, error) {
	restConfig, err := clientcmd.RESTConfigFromKubeConfig(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create REST config from kubeconfig: %w", err)
	}
	return restConfig, nil
}
