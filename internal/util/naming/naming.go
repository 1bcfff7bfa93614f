package naming

import (
	"fmt"
	"strings"
)

// Fixed object names inside an instance or PostgreSQL namespace.
const (
	DBPropertiesSecret   = "db-properties"
	DBPropertiesKey      = "database.properties"
	AdminSecret          = "admin-secret"
	AdminPasswordKey     = "postgresql-admin-password"
	ProxyServerConfigMap = "nginx-server-configuration"
	ProxyServerBlockKey  = "server-block.conf"
)

func Namespace(instance string) string {
	return instance
}

func Release(instance string) string {
	return instance
}

func Role(instance string) string {
	return instance
}

func Database(instance string) string {
	return instance
}

func RolePassword(instance string) string {
	return fmt.Sprintf("%s-role-password", instance)
}

func ServerDataClaim(instance string) string {
	return fmt.Sprintf("%s-server-data", instance)
}

func LogsClaim(instance string) string {
	return fmt.Sprintf("%s-logs", instance)
}

// ServiceHost returns the in-cluster DNS name of a Service.
func ServiceHost(service, namespace string) string {
	return fmt.Sprintf("%s.%s.svc.cluster.local", service, namespace)
}

// JDBCDriverJar returns the PostgreSQL JDBC driver file name for a version.
func JDBCDriverJar(version string) string {
	return fmt.Sprintf("postgresql-%s.jar", version)
}

// NodeID joins a node kind and its scope into a graph node ID,
// e.g. NodeID("secret", "teamcity-1", "db-properties") = "secret/teamcity-1/db-properties".
func NodeID(kind string, parts ...string) string {
	return strings.Join(append([]string{kind}, parts...), "/")
}
