package wizard

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/imamik/tcstack/internal/config"
)

// Function variable for dependency injection in tests.
var confirmOverwrite = defaultConfirmOverwrite

// WriteConfig writes the config to a YAML file with a descriptive header.
// If fullOutput is false, only the answers given in the wizard are written
// and every other field keeps its default at load time.
func WriteConfig(cfg *config.Config, outputPath string, fullOutput bool) error {
	var body []byte
	var err error

	if fullOutput {
		full := *cfg
		full.Instances = append([]config.InstanceConfig(nil), cfg.Instances...)
		full.ApplyDefaults()
		body, err = config.Marshal(&full, config.FormatFromPath(outputPath))
	} else {
		body, err = yaml.Marshal(buildMinimalConfig(cfg))
	}

	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(generateHeader(outputPath, fullOutput))
	sb.WriteString("\n")
	sb.Write(body)

	if err := os.WriteFile(outputPath, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// MinimalConfig represents the minimal configuration for YAML output.
type MinimalConfig struct {
	Name      string                  `yaml:"name"`
	State     *MinimalStateConfig     `yaml:"state,omitempty"`
	Postgres  *MinimalPostgresConfig  `yaml:"postgres,omitempty"`
	Instances []MinimalInstanceConfig `yaml:"instances"`
	Proxy     *MinimalProxyConfig     `yaml:"proxy,omitempty"`
}

// MinimalStateConfig is only written for non-default backends.
type MinimalStateConfig struct {
	Backend string                `yaml:"backend"`
	S3      *config.S3StateConfig `yaml:"s3,omitempty"`
}

// MinimalPostgresConfig is only written for external servers.
type MinimalPostgresConfig struct {
	Managed bool   `yaml:"managed"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port,omitempty"`
}

// MinimalInstanceConfig contains essential instance settings.
type MinimalInstanceConfig struct {
	Name        string `yaml:"name"`
	ServiceType string `yaml:"service_type,omitempty"`
}

// MinimalProxyConfig is only written when the proxy is enabled.
type MinimalProxyConfig struct {
	Enabled bool `yaml:"enabled"`
}

func buildMinimalConfig(cfg *config.Config) *MinimalConfig {
	minCfg := &MinimalConfig{Name: cfg.Name}

	if cfg.State.Backend == config.StateBackendS3 {
		s3 := cfg.State.S3
		minCfg.State = &MinimalStateConfig{Backend: config.StateBackendS3, S3: &s3}
	}

	if !cfg.Postgres.IsManaged() {
		minCfg.Postgres = &MinimalPostgresConfig{
			Host: cfg.Postgres.Host,
			Port: cfg.Postgres.Port,
		}
	}

	for _, inst := range cfg.Instances {
		m := MinimalInstanceConfig{Name: inst.Name}
		if inst.ServiceType != config.ServiceTypeLoadBalancer {
			m.ServiceType = inst.ServiceType
		}
		minCfg.Instances = append(minCfg.Instances, m)
	}

	if cfg.Proxy.Enabled {
		minCfg.Proxy = &MinimalProxyConfig{Enabled: true}
	}

	return minCfg
}

// generateHeader creates the YAML file header comment.
func generateHeader(outputPath string, fullOutput bool) string {
	mode := "minimal"
	note := "\n# Note: This is a minimal config. Use --full flag for all options."
	if fullOutput {
		mode = "full"
		note = ""
	}
	return fmt.Sprintf(`# tcstack configuration
# Generated by: tcstack init
# Generated at: %s
# Output mode: %s%s
#
# Optional environment variables:
#   %s - admin password of an external PostgreSQL server
#   %s / %s - credentials for the s3 state backend
#
# Usage:
#   tcstack plan -c %s
#   tcstack apply -c %s
`, time.Now().Format(time.RFC3339), mode, note,
		config.EnvAdminPassword, config.EnvS3AccessKey, config.EnvS3SecretKey,
		outputPath, outputPath)
}

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ConfirmOverwrite prompts the user to confirm overwriting an existing file.
func ConfirmOverwrite(path string) (bool, error) {
	return confirmOverwrite(path)
}

// defaultConfirmOverwrite is the default implementation that prompts via stdin.
func defaultConfirmOverwrite(path string) (bool, error) {
	fmt.Printf("\nFile already exists: %s\n", path)
	fmt.Print("Overwrite? (y/n): ")

	var response string
	if _, err := fmt.Scanln(&response); err != nil {
		return false, err
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes", nil
}
