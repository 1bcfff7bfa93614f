package config

// Default chart coordinates and images.
const (
	BitnamiRepository = "https://charts.bitnami.com/bitnami"

	DefaultPostgresChart        = "postgresql"
	DefaultPostgresChartVersion = "11.2.4"
	DefaultPostgresImage        = "bitnami/postgresql"
	DefaultPostgresImageTag     = "14.2.0-debian-10-r58"

	DefaultTeamCityChartPath    = "charts/teamcity"
	DefaultTeamCityChartVersion = "0.1.0"
	DefaultTeamCityImage        = "jetbrains/teamcity-server"
	DefaultTeamCityImageTag     = "2022.04"
	DefaultTeamCityMemOpts      = "-Xmx2g -XX:ReservedCodeCacheSize=350m"
	DefaultInitImage            = "curlimages/curl:7.83.0"
	DefaultJDBCDriverVersion    = "42.2.20"

	DefaultProxyChart        = "nginx"
	DefaultProxyChartVersion = "11.1.5"
	DefaultProxyImage        = "bitnami/nginx"
	DefaultProxyImageTag     = "1.21.6-debian-10-r105"
)

// Default names, ports and sizes.
const (
	DefaultStackName = "tcstack"

	DefaultPostgresNamespace = "postgresql"
	DefaultPostgresRelease   = "postgresql"
	DefaultPostgresPort      = 5432
	DefaultAdminUser         = "postgres"
	DefaultSSLMode           = "disable"
	DefaultPersistenceSize   = "8Gi"

	DefaultTeamCityBasePort = 8111

	DefaultProxyNamespace = "nginx-proxy"
	DefaultProxyRelease   = "nginx-proxy"
	DefaultProxyPort      = 8000
	DefaultProxyHTTPSPort = 8443

	DefaultStatePath = ".tcstack/state.yaml"
	DefaultStateKey  = "tcstack/state.yaml"
)

// Service types accepted for exposed services.
const (
	ServiceTypeClusterIP    = "ClusterIP"
	ServiceTypeNodePort     = "NodePort"
	ServiceTypeLoadBalancer = "LoadBalancer"
)

// State backends.
const (
	StateBackendFile = "file"
	StateBackendS3   = "s3"
)

// Password encodings sent to PostgreSQL.
const (
	PasswordEncryptionSCRAM = "scram-sha-256"
	PasswordEncryptionPlain = "plain"
)

// Environment variables read at runtime.
const (
	EnvAdminPassword = "TCSTACK_POSTGRES_ADMIN_PASSWORD"
	EnvS3AccessKey   = "TCSTACK_S3_ACCESS_KEY"
	EnvS3SecretKey   = "TCSTACK_S3_SECRET_KEY"
)
