package k8s

import (
	"errors"
	"fmt"
	"os"

	"k8s.io/client-go/tools/clientcmd"
)

// ResolveKubeconfigPath picks the kubeconfig in order of precedence: the
// command-line flag, the config file field, $KUBECONFIG, then
// ~/.kube/config.
func ResolveKubeconfigPath(flag, configured string) (string, error) {
	for _, candidate := range []string{flag, configured, os.Getenv(clientcmd.RecommendedConfigPathEnvVar)} {
		if candidate != "" {
			return candidate, nil
		}
	}

	if _, err := os.Stat(clientcmd.RecommendedHomeFile); err == nil {
		return clientcmd.RecommendedHomeFile, nil
	}

	return "", errors.New("no kubeconfig found: set --kubeconfig, the kubeconfig field or $KUBECONFIG")
}

// ReadKubeconfig resolves and reads the kubeconfig.
func ReadKubeconfig(flag, configured string) ([]byte, error) {
	path, err := ResolveKubeconfigPath(flag, configured)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read kubeconfig %s: %w", path, err)
	}
	return data, nil
}
