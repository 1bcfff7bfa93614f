package wizard

import (
	"fmt"
	"strconv"

	"github.com/imamik/tcstack/internal/config"
)

// BuildConfig creates a Config struct from the wizard result.
func BuildConfig(result *WizardResult) (*config.Config, error) {
	if result.InstanceCount < 1 || result.InstanceCount > MaxInstances {
		return nil, errInstanceCountRange
	}

	cfg := &config.Config{
		Name: result.StackName,
		State: config.StateConfig{
			Backend: result.StateBackend,
		},
		Proxy: config.ProxyConfig{
			Enabled: result.ProxyEnabled,
		},
	}

	if result.StateBackend == config.StateBackendS3 {
		cfg.State.S3 = config.S3StateConfig{
			Endpoint: result.S3Endpoint,
			Region:   result.S3Region,
			Bucket:   result.S3Bucket,
		}
	}

	if result.PostgresMode == PostgresExternal {
		port, err := strconv.Atoi(result.PostgresPort)
		if err != nil {
			return nil, errPortInvalid
		}
		cfg.Postgres.Managed = boolPtr(false)
		cfg.Postgres.Host = result.PostgresHost
		cfg.Postgres.Port = port
	}

	for i := 1; i <= result.InstanceCount; i++ {
		cfg.Instances = append(cfg.Instances, config.InstanceConfig{
			Name:        fmt.Sprintf("%s-%d", result.InstancePrefix, i),
			ServiceType: result.ServiceType,
		})
	}

	return cfg, nil
}

// boolPtr returns a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}
