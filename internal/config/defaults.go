package config

// ApplyDefaults fills every unset field with the stock chart versions,
// images and sizing.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = DefaultStackName
	}

	c.applyStateDefaults()
	c.applyPostgresDefaults()
	c.applyTeamCityDefaults()
	c.applyInstanceDefaults()
	c.applyProxyDefaults()
}

func (c *Config) applyStateDefaults() {
	if c.State.Backend == "" {
		c.State.Backend = StateBackendFile
	}
	if c.State.Backend == StateBackendFile && c.State.Path == "" {
		c.State.Path = DefaultStatePath
	}
	if c.State.Backend == StateBackendS3 && c.State.S3.Key == "" {
		c.State.S3.Key = DefaultStateKey
	}
}

func (c *Config) applyPostgresDefaults() {
	p := &c.Postgres
	setString(&p.Namespace, DefaultPostgresNamespace)
	setString(&p.ReleaseName, DefaultPostgresRelease)
	setInt(&p.Port, DefaultPostgresPort)
	setString(&p.AdminUser, DefaultAdminUser)
	setString(&p.SSLMode, DefaultSSLMode)
	setString(&p.PasswordEncryption, PasswordEncryptionSCRAM)
	setInt(&p.AdminPassword.Length, 20)

	if p.Chart.Path == "" {
		setString(&p.Chart.Repository, BitnamiRepository)
		setString(&p.Chart.Name, DefaultPostgresChart)
	}
	setString(&p.Chart.Version, DefaultPostgresChartVersion)
	setString(&p.Image.Repository, DefaultPostgresImage)
	setString(&p.Image.Tag, DefaultPostgresImageTag)
	setString(&p.Service.Type, ServiceTypeLoadBalancer)
	setInt(&p.Service.Port, p.Port)
	setString(&p.Persistence, DefaultPersistenceSize)
	setString(&p.Resources.Requests.Memory, "256Mi")
	setString(&p.Resources.Requests.CPU, "250m")
}

func (c *Config) applyTeamCityDefaults() {
	tc := &c.TeamCity
	if tc.Chart.Repository == "" {
		setString(&tc.Chart.Path, DefaultTeamCityChartPath)
	}
	setString(&tc.Chart.Version, DefaultTeamCityChartVersion)
	setString(&tc.Image.Repository, DefaultTeamCityImage)
	setString(&tc.Image.Tag, DefaultTeamCityImageTag)
	setInt(&tc.Replicas, 1)
	setString(&tc.MemOpts, DefaultTeamCityMemOpts)
	setString(&tc.InitImage, DefaultInitImage)
	setString(&tc.JDBCDriverVersion, DefaultJDBCDriverVersion)
	setString(&tc.Service.Type, ServiceTypeLoadBalancer)
	setInt(&tc.Service.Port, DefaultTeamCityBasePort)
	setString(&tc.Resources.Requests.Memory, "2048Mi")
	setString(&tc.Resources.Requests.CPU, "2000m")
	setString(&tc.Resources.Limits.Memory, "4096Mi")
	setString(&tc.Resources.Limits.CPU, "2000m")
	setInt(&tc.RolePassword.Length, 10)
}

// applyInstanceDefaults gives instance i the port base+i unless one is set.
func (c *Config) applyInstanceDefaults() {
	for i := range c.Instances {
		inst := &c.Instances[i]
		setString(&inst.ServiceType, c.TeamCity.Service.Type)
		setInt(&inst.ServicePort, c.TeamCity.Service.Port+i)
		setInt(&inst.Replicas, c.TeamCity.Replicas)
		setString(&inst.ImageTag, c.TeamCity.Image.Tag)
	}
}

func (c *Config) applyProxyDefaults() {
	px := &c.Proxy
	if !px.Enabled {
		return
	}
	setString(&px.Namespace, DefaultProxyNamespace)
	setString(&px.ReleaseName, DefaultProxyRelease)
	if px.Chart.Path == "" {
		setString(&px.Chart.Repository, BitnamiRepository)
		setString(&px.Chart.Name, DefaultProxyChart)
	}
	setString(&px.Chart.Version, DefaultProxyChartVersion)
	setString(&px.Image.Repository, DefaultProxyImage)
	setString(&px.Image.Tag, DefaultProxyImageTag)
	setString(&px.ServiceType, ServiceTypeLoadBalancer)
	setInt(&px.Port, DefaultProxyPort)
	setInt(&px.HTTPSPort, DefaultProxyHTTPSPort)
}

func setString(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func setInt(field *int, value int) {
	if *field == 0 {
		*field = value
	}
}
