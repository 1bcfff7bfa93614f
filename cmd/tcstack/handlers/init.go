package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/tcstack/internal/config"
	"github.com/imamik/tcstack/internal/config/wizard"
)

// Factory function variables for init - can be replaced in tests.
var (
	wizardFileExists       = wizard.FileExists
	wizardConfirmOverwrite = wizard.ConfirmOverwrite
	wizardRunWizard        = wizard.RunWizard
	wizardBuildConfig      = wizard.BuildConfig
	wizardWriteConfig      = wizard.WriteConfig
)

// Init runs the configuration wizard and writes the result to outputPath.
func Init(ctx context.Context, outputPath string, fullOutput bool) error {
	if wizardFileExists(outputPath) {
		ok, err := wizardConfirmOverwrite(outputPath)
		if err != nil {
			return fmt.Errorf("failed to confirm overwrite: %w", err)
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	printWelcome(fullOutput)

	result, err := wizardRunWizard(ctx)
	if err != nil {
		return fmt.Errorf("wizard canceled: %w", err)
	}

	cfg, err := wizardBuildConfig(result)
	if err != nil {
		return fmt.Errorf("invalid answers: %w", err)
	}

	if err := wizardWriteConfig(cfg, outputPath, fullOutput); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, cfg)

	return nil
}

// printWelcome prints the welcome message.
func printWelcome(fullOutput bool) {
	fmt.Println()
	fmt.Println("tcstack - TeamCity on Kubernetes")
	fmt.Println("================================")
	fmt.Println()
	fmt.Println("This wizard creates a stack configuration with sensible defaults.")
	if fullOutput {
		fmt.Println("Full output mode: every option is written with its default value.")
	} else {
		fmt.Println("Minimal output mode: only your answers are written.")
	}
	fmt.Println()
}

// printInitSuccess prints the success message with summary and next steps.
func printInitSuccess(outputPath string, cfg *config.Config) {
	fmt.Println()
	fmt.Println("Configuration saved!")
	fmt.Println()
	fmt.Printf("  File: %s\n", outputPath)
	fmt.Println()

	fmt.Println("Stack Summary")
	fmt.Println("-------------")
	fmt.Printf("  Name:       %s\n", cfg.Name)
	fmt.Printf("  Instances:  %d\n", len(cfg.Instances))
	for _, inst := range cfg.Instances {
		fmt.Printf("    - %s\n", inst.Name)
	}
	if cfg.Postgres.IsManaged() {
		fmt.Println("  PostgreSQL: managed (bitnami chart)")
	} else {
		fmt.Printf("  PostgreSQL: external (%s)\n", cfg.Postgres.Host)
	}
	fmt.Printf("  Proxy:      %t\n", cfg.Proxy.Enabled)
	fmt.Printf("  State:      %s\n", cfg.State.Backend)
	fmt.Println()

	fmt.Println("Next Steps")
	fmt.Println("----------")
	step := 1
	if !cfg.Postgres.IsManaged() {
		fmt.Printf("  %d. Export the PostgreSQL admin password:\n", step)
		fmt.Printf("     export %s=<password>\n", config.EnvAdminPassword)
		fmt.Println()
		step++
	}
	if cfg.State.Backend == config.StateBackendS3 {
		fmt.Printf("  %d. Export the S3 credentials:\n", step)
		fmt.Printf("     export %s=<key> %s=<secret>\n", config.EnvS3AccessKey, config.EnvS3SecretKey)
		fmt.Println()
		step++
	}
	fmt.Printf("  %d. Review the plan:\n", step)
	fmt.Printf("     tcstack plan -c %s\n", outputPath)
	fmt.Println()
	fmt.Printf("  %d. Deploy:\n", step+1)
	fmt.Printf("     tcstack apply -c %s\n", outputPath)
	fmt.Println()
}
