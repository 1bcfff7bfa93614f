package k8s

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
)

// ApplySecret creates or replaces a secret in its namespace. The data is set
// exactly as given, never merged with what the cluster holds.
func (c *client) ApplySecret(ctx context.Context, secret *corev1.Secret) (ObjectRef, error) {
	if err := requireNamespacedName("secret", secret.Namespace, secret.Name); err != nil {
		return ObjectRef{}, err
	}

	secrets := c.clientset.CoreV1().Secrets(secret.Namespace)
	logger := logf.FromContext(ctx).WithValues("namespace", secret.Namespace, "secret", secret.Name)

	existing, err := secrets.Get(ctx, secret.Name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		created, err := secrets.Create(ctx, secret, metav1.CreateOptions{})
		if err != nil {
			return ObjectRef{}, fmt.Errorf("failed to create secret %s/%s: %w",
				secret.Namespace, secret.Name, err)
		}
		logger.Info("created secret")
		return secretRef(created), nil
	}
	if err != nil {
		return ObjectRef{}, fmt.Errorf("failed to get secret %s/%s: %w", secret.Namespace, secret.Name, err)
	}

	// A Secret's type is immutable, so keep the existing one.
	updated := existing.DeepCopy()
	updated.Labels = secret.Labels
	updated.Data = secret.Data
	updated.StringData = secret.StringData

	result, err := secrets.Update(ctx, updated, metav1.UpdateOptions{})
	if err != nil {
		return ObjectRef{}, fmt.Errorf("failed to update secret %s/%s: %w",
			secret.Namespace, secret.Name, err)
	}
	logger.V(1).Info("replaced secret data")
	return secretRef(result), nil
}

// DeleteSecret deletes a secret, returning nil if not found.
func (c *client) DeleteSecret(ctx context.Context, namespace, name string) error {
	if err := requireNamespacedName("secret", namespace, name); err != nil {
		return err
	}

	err := c.clientset.CoreV1().Secrets(namespace).Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete secret %s/%s: %w", namespace, name, err)
	}
	return nil
}

func secretRef(s *corev1.Secret) ObjectRef {
	return ObjectRef{Kind: "Secret", Namespace: s.Namespace, Name: s.Name, UID: s.UID}
}

func requireNamespacedName(kind, namespace, name string) error {
	if namespace == "" {
		return fmt.Errorf("%s namespace is required", kind)
	}
	if name == "" {
		return fmt.Errorf("%s name is required", kind)
	}
	return nil
}
