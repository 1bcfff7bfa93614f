package config

// Config holds the desired state of one tcstack deployment.
type Config struct {
	// Name labels every object as part of this stack.
	Name       string `yaml:"name" toml:"name"`
	Kubeconfig string `yaml:"kubeconfig,omitempty" toml:"kubeconfig,omitempty"`

	State     StateConfig      `yaml:"state" toml:"state"`
	Postgres  PostgresConfig   `yaml:"postgres" toml:"postgres"`
	TeamCity  TeamCityConfig   `yaml:"teamcity" toml:"teamcity"`
	Instances []InstanceConfig `yaml:"instances" toml:"instances"`
	Proxy     ProxyConfig      `yaml:"proxy" toml:"proxy"`
}

// StateConfig selects where generated passwords are persisted.
type StateConfig struct {
	Backend string        `yaml:"backend" toml:"backend"`
	Path    string        `yaml:"path,omitempty" toml:"path,omitempty"`
	S3      S3StateConfig `yaml:"s3,omitempty" toml:"s3,omitempty"`
}

// S3StateConfig locates the state object in an S3-compatible bucket.
// Credentials come from TCSTACK_S3_ACCESS_KEY and TCSTACK_S3_SECRET_KEY.
type S3StateConfig struct {
	Endpoint string `yaml:"endpoint,omitempty" toml:"endpoint,omitempty"`
	Region   string `yaml:"region,omitempty" toml:"region,omitempty"`
	Bucket   string `yaml:"bucket,omitempty" toml:"bucket,omitempty"`
	Key      string `yaml:"key,omitempty" toml:"key,omitempty"`
}

// ChartConfig references a chart either in a repository or on disk.
// Path takes precedence over Repository/Name.
type ChartConfig struct {
	Repository string `yaml:"repository,omitempty" toml:"repository,omitempty"`
	Name       string `yaml:"name,omitempty" toml:"name,omitempty"`
	Path       string `yaml:"path,omitempty" toml:"path,omitempty"`
	Version    string `yaml:"version" toml:"version"`
}

type ImageConfig struct {
	Repository string `yaml:"repository" toml:"repository"`
	Tag        string `yaml:"tag" toml:"tag"`
}

// PasswordPolicy controls how a password is generated the first time.
// Changing it later never regenerates an existing password.
type PasswordPolicy struct {
	Length  int  `yaml:"length" toml:"length"`
	Special bool `yaml:"special" toml:"special"`
}

type ServiceConfig struct {
	Type string `yaml:"type" toml:"type"`
	Port int    `yaml:"port" toml:"port"`
}

type ResourceList struct {
	Memory string `yaml:"memory" toml:"memory"`
	CPU    string `yaml:"cpu" toml:"cpu"`
}

type ResourcesConfig struct {
	Requests ResourceList `yaml:"requests" toml:"requests"`
	Limits   ResourceList `yaml:"limits,omitempty" toml:"limits,omitempty"`
}

// PostgresConfig describes the shared PostgreSQL server.
type PostgresConfig struct {
	// Managed deploys the bitnami chart. When false, Host must point at an
	// existing server and the admin password comes from the environment or
	// AdminPasswordFile.
	Managed     *bool  `yaml:"managed,omitempty" toml:"managed,omitempty"`
	Namespace   string `yaml:"namespace" toml:"namespace"`
	ReleaseName string `yaml:"release_name" toml:"release_name"`

	// Host overrides the address TeamCity uses to reach PostgreSQL.
	Host string `yaml:"host,omitempty" toml:"host,omitempty"`
	// AdminHost overrides the address tcstack itself connects to, e.g. a
	// port-forward on 127.0.0.1.
	AdminHost string `yaml:"admin_host,omitempty" toml:"admin_host,omitempty"`
	Port      int    `yaml:"port" toml:"port"`

	AdminUser          string         `yaml:"admin_user" toml:"admin_user"`
	AdminPasswordFile  string         `yaml:"admin_password_file,omitempty" toml:"admin_password_file,omitempty"`
	AdminPassword      PasswordPolicy `yaml:"admin_password" toml:"admin_password"`
	SSLMode            string         `yaml:"ssl_mode" toml:"ssl_mode"`
	PasswordEncryption string         `yaml:"password_encryption" toml:"password_encryption"`

	Chart       ChartConfig     `yaml:"chart" toml:"chart"`
	Image       ImageConfig     `yaml:"image" toml:"image"`
	Service     ServiceConfig   `yaml:"service" toml:"service"`
	Persistence string          `yaml:"persistence" toml:"persistence"`
	Resources   ResourcesConfig `yaml:"resources" toml:"resources"`
	Values      map[string]any  `yaml:"values,omitempty" toml:"values,omitempty"`
}

// IsManaged reports whether tcstack deploys PostgreSQL itself.
func (p PostgresConfig) IsManaged() bool {
	return p.Managed == nil || *p.Managed
}

// TeamCityConfig holds settings shared by every TeamCity instance.
type TeamCityConfig struct {
	Chart             ChartConfig     `yaml:"chart" toml:"chart"`
	Image             ImageConfig     `yaml:"image" toml:"image"`
	Replicas          int             `yaml:"replicas" toml:"replicas"`
	MemOpts           string          `yaml:"mem_opts" toml:"mem_opts"`
	InitImage         string          `yaml:"init_image" toml:"init_image"`
	JDBCDriverVersion string          `yaml:"jdbc_driver_version" toml:"jdbc_driver_version"`
	Service           ServiceConfig   `yaml:"service" toml:"service"`
	Resources         ResourcesConfig `yaml:"resources" toml:"resources"`
	RolePassword      PasswordPolicy  `yaml:"role_password" toml:"role_password"`
	Values            map[string]any  `yaml:"values,omitempty" toml:"values,omitempty"`
}

// InstanceConfig declares one TeamCity server with its own namespace,
// database and role, all named after Name.
type InstanceConfig struct {
	Name        string         `yaml:"name" toml:"name"`
	ServiceType string         `yaml:"service_type,omitempty" toml:"service_type,omitempty"`
	ServicePort int            `yaml:"service_port,omitempty" toml:"service_port,omitempty"`
	Replicas    int            `yaml:"replicas,omitempty" toml:"replicas,omitempty"`
	ImageTag    string         `yaml:"image_tag,omitempty" toml:"image_tag,omitempty"`
	Values      map[string]any `yaml:"values,omitempty" toml:"values,omitempty"`
}

// ProxyConfig describes the optional Nginx proxy in front of the instances.
type ProxyConfig struct {
	Enabled     bool           `yaml:"enabled" toml:"enabled"`
	Namespace   string         `yaml:"namespace,omitempty" toml:"namespace,omitempty"`
	ReleaseName string         `yaml:"release_name,omitempty" toml:"release_name,omitempty"`
	Chart       ChartConfig    `yaml:"chart,omitempty" toml:"chart,omitempty"`
	Image       ImageConfig    `yaml:"image,omitempty" toml:"image,omitempty"`
	ServiceType string         `yaml:"service_type,omitempty" toml:"service_type,omitempty"`
	Port        int            `yaml:"port,omitempty" toml:"port,omitempty"`
	HTTPSPort   int            `yaml:"https_port,omitempty" toml:"https_port,omitempty"`
	Values      map[string]any `yaml:"values,omitempty" toml:"values,omitempty"`
}
