package k8s

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
)

// ServiceAddress polls the Service until its load balancer publishes an
// ingress address. A missing Service is polled as well, since the release
// that creates it may still be settling.
func (c *client) ServiceAddress(ctx context.Context, namespace, name string, timeout time.Duration) (string, error) {
	logger := logf.FromContext(ctx).WithValues("namespace", namespace, "service", name)

	var address string
	err := wait.PollUntilContextTimeout(ctx, c.pollInterval, timeout, true, func(ctx context.Context) (bool, error) {
		svc, err := c.clientset.CoreV1().Services(namespace).Get(ctx, name, metav1.GetOptions{})
		if apierrors.IsNotFound(err) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to get service %s/%s: %w", namespace, name, err)
		}

		address = ingressAddress(svc)
		if address == "" {
			logger.V(1).Info("waiting for load balancer address")
		}
		return address != "", nil
	})
	if err != nil {
		return "", fmt.Errorf("failed waiting for address of service %s/%s: %w", namespace, name, err)
	}

	return address, nil
}

// ingressAddress returns the first ingress IP, falling back to its hostname.
func ingressAddress(svc *corev1.Service) string {
	for _, ing := range svc.Status.LoadBalancer.Ingress {
		if ing.IP != "" {
			return ing.IP
		}
		if ing.Hostname != "" {
			return ing.Hostname
		}
	}
	return ""
}
