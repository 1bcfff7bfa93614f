package wizard

import (
	"context"
	"fmt"
)

// WizardResult holds all the answers from the interactive wizard.
type WizardResult struct {
	StackName string

	// Instances
	InstanceCount  int
	InstancePrefix string
	ServiceType    string

	// PostgreSQL
	PostgresMode string
	PostgresHost string
	PostgresPort string

	ProxyEnabled bool

	// State backend
	StateBackend string
	S3Endpoint   string
	S3Region     string
	S3Bucket     string
}

// RunWizard runs the interactive configuration wizard.
// The context is used for cancellation support (e.g., Ctrl+C).
func RunWizard(ctx context.Context) (*WizardResult, error) {
	result := &WizardResult{}

	if err := runStackGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("stack: %w", err)
	}

	if err := runInstancesGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("instances: %w", err)
	}

	if err := runPostgresGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("postgresql: %w", err)
	}

	if err := runProxyGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("proxy: %w", err)
	}

	if err := runStateGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("state: %w", err)
	}

	return result, nil
}
