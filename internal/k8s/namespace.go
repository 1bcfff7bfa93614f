package k8s

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
)

func (c *client) EnsureNamespace(ctx context.Context, name string, labels map[string]string) (ObjectRef, error) {
	if name == "" {
		return ObjectRef{}, fmt.Errorf("namespace name is required")
	}

	namespaces := c.clientset.CoreV1().Namespaces()

	existing, err := namespaces.Get(ctx, name, metav1.GetOptions{})
	if err == nil {
		return namespaceRef(existing), nil
	}
	if !apierrors.IsNotFound(err) {
		return ObjectRef{}, fmt.Errorf("failed to get namespace %s: %w", name, err)
	}

	created, err := namespaces.Create(ctx, &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{Name: name, Labels: labels},
	}, metav1.CreateOptions{})
	if apierrors.IsAlreadyExists(err) {
		// Lost a race with another writer.
		existing, err = namespaces.Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return ObjectRef{}, fmt.Errorf("failed to get namespace %s: %w", name, err)
		}
		return namespaceRef(existing), nil
	}
	if err != nil {
		return ObjectRef{}, fmt.Errorf("failed to create namespace %s: %w", name, err)
	}

	logf.FromContext(ctx).Info("created namespace", "namespace", name)
	return namespaceRef(created), nil
}

func (c *client) DeleteNamespace(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("namespace name is required")
	}

	err := c.clientset.CoreV1().Namespaces().Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete namespace %s: %w", name, err)
	}
	return nil
}

func namespaceRef(ns *corev1.Namespace) ObjectRef {
	return ObjectRef{Kind: "Namespace", Name: ns.Name, UID: ns.UID}
}
