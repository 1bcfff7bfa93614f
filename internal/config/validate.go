package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	postgresqlreservedwords "github.com/rstudio/postgresql-reserved-words"
	"k8s.io/apimachinery/pkg/util/validation"
)

// ValidServiceTypes contains the Service types an exposed component may use.
var ValidServiceTypes = map[string]bool{
	ServiceTypeClusterIP:    true,
	ServiceTypeNodePort:     true,
	ServiceTypeLoadBalancer: true,
}

// Validate checks the configuration for common errors and returns a detailed
// error if validation fails. ApplyDefaults must run first.
func (c *Config) Validate() error {
	if err := validateDNSLabel("name", c.Name); err != nil {
		return err
	}

	if err := c.validateState(); err != nil {
		return fmt.Errorf("state validation failed: %w", err)
	}

	if err := c.validatePostgres(); err != nil {
		return fmt.Errorf("postgres validation failed: %w", err)
	}

	if err := c.validateTeamCity(); err != nil {
		return fmt.Errorf("teamcity validation failed: %w", err)
	}

	if err := c.validateInstances(); err != nil {
		return fmt.Errorf("instance validation failed: %w", err)
	}

	if err := c.validateProxy(); err != nil {
		return fmt.Errorf("proxy validation failed: %w", err)
	}

	return nil
}

func (c *Config) validateState() error {
	switch c.State.Backend {
	case StateBackendFile:
		if c.State.Path == "" {
			return errors.New("state.path is required for the file backend")
		}
	case StateBackendS3:
		if c.State.S3.Bucket == "" {
			return errors.New("state.s3.bucket is required for the s3 backend")
		}
		if c.State.S3.Endpoint == "" {
			return errors.New("state.s3.endpoint is required for the s3 backend")
		}
		if c.State.S3.Region == "" {
			return errors.New("state.s3.region is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown state backend %q (valid: file, s3)", c.State.Backend)
	}
	return nil
}

func (c *Config) validatePostgres() error {
	p := c.Postgres
	if err := validatePort("postgres.port", p.Port); err != nil {
		return err
	}
	if p.AdminUser == "" {
		return errors.New("postgres.admin_user is required")
	}
	if p.PasswordEncryption != PasswordEncryptionSCRAM && p.PasswordEncryption != PasswordEncryptionPlain {
		return fmt.Errorf("postgres.password_encryption must be %q or %q, got %q",
			PasswordEncryptionSCRAM, PasswordEncryptionPlain, p.PasswordEncryption)
	}

	if !p.IsManaged() {
		if p.Host == "" {
			return errors.New("postgres.host is required when postgres.managed is false")
		}
		return nil
	}

	if err := validateDNSLabel("postgres.namespace", p.Namespace); err != nil {
		return err
	}
	if err := validateDNSLabel("postgres.release_name", p.ReleaseName); err != nil {
		return err
	}
	if err := validatePolicy("postgres.admin_password", p.AdminPassword); err != nil {
		return err
	}
	if err := validateChart("postgres.chart", p.Chart); err != nil {
		return err
	}
	if err := validateService("postgres.service", p.Service.Type, p.Service.Port); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTeamCity() error {
	tc := c.TeamCity
	if err := validateChart("teamcity.chart", tc.Chart); err != nil {
		return err
	}
	if err := validatePolicy("teamcity.role_password", tc.RolePassword); err != nil {
		return err
	}
	if tc.Replicas < 0 {
		return fmt.Errorf("teamcity.replicas must not be negative, got %d", tc.Replicas)
	}
	if _, err := semver.NewVersion(tc.JDBCDriverVersion); err != nil {
		return fmt.Errorf("teamcity.jdbc_driver_version %q is not a valid version: %w", tc.JDBCDriverVersion, err)
	}
	return nil
}

func (c *Config) validateInstances() error {
	if len(c.Instances) == 0 {
		return errors.New("at least one instance is required")
	}

	seen := make(map[string]bool, len(c.Instances))
	reserved := map[string]bool{
		c.Postgres.Namespace: c.Postgres.IsManaged(),
		c.Proxy.Namespace:    c.Proxy.Enabled,
	}

	for i, inst := range c.Instances {
		field := fmt.Sprintf("instances[%d].name", i)
		if err := validateDNSLabel(field, inst.Name); err != nil {
			return err
		}
		if postgresqlreservedwords.IsReserved(inst.Name) {
			return fmt.Errorf("%s: %q is a reserved word in PostgreSQL", field, inst.Name)
		}
		if inst.Name == c.Postgres.AdminUser || inst.Name == "postgres" {
			return fmt.Errorf("%s: %q clashes with the PostgreSQL admin role", field, inst.Name)
		}
		if seen[inst.Name] {
			return fmt.Errorf("%s: duplicate instance name %q", field, inst.Name)
		}
		if reserved[inst.Name] {
			return fmt.Errorf("%s: %q is already used as a namespace by another component", field, inst.Name)
		}
		seen[inst.Name] = true

		if err := validateService(fmt.Sprintf("instances[%d]", i), inst.ServiceType, inst.ServicePort); err != nil {
			return err
		}
		if inst.Replicas < 0 {
			return fmt.Errorf("instances[%d].replicas must not be negative, got %d", i, inst.Replicas)
		}
	}
	return nil
}

func (c *Config) validateProxy() error {
	px := c.Proxy
	if !px.Enabled {
		return nil
	}
	if err := validateDNSLabel("proxy.namespace", px.Namespace); err != nil {
		return err
	}
	if err := validateChart("proxy.chart", px.Chart); err != nil {
		return err
	}
	if err := validateService("proxy", px.ServiceType, px.Port); err != nil {
		return err
	}
	return validatePort("proxy.https_port", px.HTTPSPort)
}

func validateDNSLabel(field, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", field)
	}
	if errs := validation.IsDNS1123Label(value); len(errs) > 0 {
		return fmt.Errorf("%s %q is invalid: %s", field, value, strings.Join(errs, "; "))
	}
	return nil
}

func validatePort(field string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535, got %d", field, port)
	}
	return nil
}

func validateService(field, serviceType string, port int) error {
	if !ValidServiceTypes[serviceType] {
		return fmt.Errorf("%s.service_type %q is invalid (valid: ClusterIP, NodePort, LoadBalancer)", field, serviceType)
	}
	return validatePort(field+".port", port)
}

func validatePolicy(field string, p PasswordPolicy) error {
	if p.Length < 1 {
		return fmt.Errorf("%s.length must be at least 1, got %d", field, p.Length)
	}
	return nil
}

func validateChart(field string, chart ChartConfig) error {
	if chart.Path == "" && (chart.Repository == "" || chart.Name == "") {
		return fmt.Errorf("%s requires either path or repository and name", field)
	}
	if chart.Version == "" {
		return fmt.Errorf("%s.version is required", field)
	}
	if _, err := semver.StrictNewVersion(strings.TrimPrefix(chart.Version, "v")); err != nil {
		return fmt.Errorf("%s.version %q is not valid semver: %w", field, chart.Version, err)
	}
	return nil
}
