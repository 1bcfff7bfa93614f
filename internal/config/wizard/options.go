package wizard

import (
	"github.com/charmbracelet/huh"

	"github.com/imamik/tcstack/internal/config"
)

// PostgreSQL modes.
const (
	PostgresManaged  = "managed"
	PostgresExternal = "external"
)

// MaxInstances bounds the instance count offered by the wizard.
const MaxInstances = 20

// PostgresModeOptions contains the PostgreSQL deployment choices.
var PostgresModeOptions = []huh.Option[string]{
	huh.NewOption("Managed - deploy the bitnami chart into the cluster", PostgresManaged),
	huh.NewOption("External - use an existing server", PostgresExternal),
}

// ServiceTypeOptions contains the service types for TeamCity servers.
var ServiceTypeOptions = []huh.Option[string]{
	huh.NewOption("LoadBalancer (Recommended)", config.ServiceTypeLoadBalancer),
	huh.NewOption("NodePort", config.ServiceTypeNodePort),
	huh.NewOption("ClusterIP (behind the proxy)", config.ServiceTypeClusterIP),
}

// StateBackendOptions contains where generated passwords are stored.
var StateBackendOptions = []huh.Option[string]{
	huh.NewOption("Local file (.tcstack/state.yaml)", config.StateBackendFile),
	huh.NewOption("S3 bucket", config.StateBackendS3),
}

// InstanceCountOptions contains common fleet sizes.
var InstanceCountOptions = []huh.Option[int]{
	huh.NewOption("1", 1),
	huh.NewOption("2", 2),
	huh.NewOption("3", 3),
	huh.NewOption("5", 5),
	huh.NewOption("10", 10),
}
