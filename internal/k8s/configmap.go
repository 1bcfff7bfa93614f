package k8s

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
)

func (c *client) ApplyConfigMap(ctx context.Context, cm *corev1.ConfigMap) (ObjectRef, error) {
	if err := requireNamespacedName("config map", cm.Namespace, cm.Name); err != nil {
		return ObjectRef{}, err
	}

	configMaps := c.clientset.CoreV1().ConfigMaps(cm.Namespace)

	existing, err := configMaps.Get(ctx, cm.Name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		created, err := configMaps.Create(ctx, cm, metav1.CreateOptions{})
		if err != nil {
			return ObjectRef{}, fmt.Errorf("failed to create config map %s/%s: %w", cm.Namespace, cm.Name, err)
		}
		logf.FromContext(ctx).Info("created config map", "namespace", cm.Namespace, "configMap", cm.Name)
		return configMapRef(created), nil
	}
	if err != nil {
		return ObjectRef{}, fmt.Errorf("failed to get config map %s/%s: %w", cm.Namespace, cm.Name, err)
	}

	updated := existing.DeepCopy()
	updated.Labels = cm.Labels
	updated.Data = cm.Data
	updated.BinaryData = cm.BinaryData

	result, err := configMaps.Update(ctx, updated, metav1.UpdateOptions{})
	if err != nil {
		return ObjectRef{}, fmt.Errorf("failed to update config map %s/%s: %w", cm.Namespace, cm.Name, err)
	}
	return configMapRef(result), nil
}

func (c *client) DeleteConfigMap(ctx context.Context, namespace, name string) error {
	if err := requireNamespacedName("config map", namespace, name); err != nil {
		return err
	}

	err := c.clientset.CoreV1().ConfigMaps(namespace).Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete config map %s/%s: %w", namespace, name, err)
	}
	return nil
}

func configMapRef(cm *corev1.ConfigMap) ObjectRef {
	return ObjectRef{Kind: "ConfigMap", Namespace: cm.Namespace, Name: cm.Name, UID: cm.UID}
}
