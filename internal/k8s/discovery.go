package k8s

import (
	"context"
	"fmt"
)

// ServerVersion checks the cluster is reachable. The discovery client does
// not take a context, so ctx is only checked before the call.
func (c *client) ServerVersion(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	info, err := c.clientset.Discovery().ServerVersion()
	if err != nil {
		return "", fmt.Errorf("failed to reach kubernetes API server: %w", err)
	}
	return info.GitVersion, nil
}
