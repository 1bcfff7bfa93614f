package wizard

import (
	"context"
	"regexp"
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/imamik/tcstack/internal/config"
)

var (
	stackNameRegex = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?$`)
	prefixRegex    = regexp.MustCompile(`^[a-z](?:[a-z0-9-]{0,40})$`)
)

// runStackGroup prompts for the stack name.
func runStackGroup(ctx context.Context, result *WizardResult) error {
	result.StackName = config.DefaultStackName

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Stack Name").
				Description("Labels every object created by tcstack").
				Placeholder(config.DefaultStackName).
				Value(&result.StackName).
				Validate(validateStackName),
		).Title("Stack"),
	).RunWithContext(ctx)
}

// runInstancesGroup prompts for the number of TeamCity servers and how they are exposed.
func runInstancesGroup(ctx context.Context, result *WizardResult) error {
	result.InstanceCount = 1
	result.InstancePrefix = "teamcity"
	result.ServiceType = config.ServiceTypeLoadBalancer

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Instance Count").
				Description("Each instance gets its own namespace, database and role").
				Options(InstanceCountOptions...).
				Value(&result.InstanceCount),
			huh.NewInput().
				Title("Instance Prefix").
				Description("Instances are named <prefix>-1, <prefix>-2, ...").
				Value(&result.InstancePrefix).
				Validate(validatePrefix),
			huh.NewSelect[string]().
				Title("Service Type").
				Description("How each TeamCity server is exposed").
				Options(ServiceTypeOptions...).
				Value(&result.ServiceType),
		).Title("TeamCity Instances"),
	).RunWithContext(ctx)
}

// runPostgresGroup prompts for the PostgreSQL mode and, for external servers, its address.
func runPostgresGroup(ctx context.Context, result *WizardResult) error {
	result.PostgresMode = PostgresManaged

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("PostgreSQL").
				Description("Where the TeamCity databases live").
				Options(PostgresModeOptions...).
				Value(&result.PostgresMode),
		).Title("Database"),
	).RunWithContext(ctx)

	if err != nil {
		return err
	}

	if result.PostgresMode != PostgresExternal {
		return nil
	}

	result.PostgresPort = strconv.Itoa(config.DefaultPostgresPort)

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Host").
				Description("Address TeamCity and tcstack use to reach PostgreSQL").
				Placeholder("pg.example.internal").
				Value(&result.PostgresHost).
				Validate(required(errHostRequired)),
			huh.NewInput().
				Title("Port").
				Value(&result.PostgresPort).
				Validate(validatePort),
		).Title("External PostgreSQL").
			Description("The admin password is read from " + config.EnvAdminPassword),
	).RunWithContext(ctx)
}

// runProxyGroup asks whether to deploy the Nginx proxy.
func runProxyGroup(ctx context.Context, result *WizardResult) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Deploy Nginx Proxy?").
				Description("Routes /<instance>/ to each TeamCity server").
				Value(&result.ProxyEnabled),
		).Title("Proxy"),
	).RunWithContext(ctx)
}

// runStateGroup prompts for the password state backend.
func runStateGroup(ctx context.Context, result *WizardResult) error {
	result.StateBackend = config.StateBackendFile

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("State Backend").
				Description("Where generated passwords are stored").
				Options(StateBackendOptions...).
				Value(&result.StateBackend),
		).Title("State"),
	).RunWithContext(ctx)

	if err != nil {
		return err
	}

	if result.StateBackend != config.StateBackendS3 {
		return nil
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Bucket").
				Value(&result.S3Bucket).
				Validate(required(errBucketRequired)),
			huh.NewInput().
				Title("Endpoint").
				Description("S3-compatible endpoint URL").
				Placeholder("https://fsn1.your-objectstorage.com").
				Value(&result.S3Endpoint).
				Validate(required(errEndpointRequired)),
			huh.NewInput().
				Title("Region").
				Placeholder("us-east-1").
				Value(&result.S3Region).
				Validate(required(errRegionRequired)),
		).Title("S3 State").
			Description("Credentials are read from " + config.EnvS3AccessKey + " and " + config.EnvS3SecretKey),
	).RunWithContext(ctx)
}

func validateStackName(s string) error {
	if s == "" {
		return errStackNameRequired
	}
	if !stackNameRegex.MatchString(s) {
		return errStackNameInvalid
	}
	return nil
}

func validatePrefix(s string) error {
	if !prefixRegex.MatchString(s) {
		return errPrefixInvalid
	}
	return nil
}

func validatePort(s string) error {
	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return errPortInvalid
	}
	return nil
}

// required returns a validator rejecting empty input with err.
func required(err error) func(string) error {
	return func(s string) error {
		if s == "" {
			return err
		}
		return nil
	}
}
