package teamcity

import (
	"fmt"
	"strconv"
	"strings"
)

// ConnectionProperties describe how a TeamCity server reaches its database.
type ConnectionProperties struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// Render returns the database.properties file TeamCity reads at startup.
// The three lines are joined by "\n" with no trailing newline.
func (p ConnectionProperties) Render() string {
	return strings.Join([]string{
		"connectionProperties.user=" + p.User,
		"connectionProperties.password=" + p.Password,
		"connectionUrl=" + p.JDBCURL(),
	}, "\n")
}

// JDBCURL returns the PostgreSQL JDBC URL of the database.
func (p ConnectionProperties) JDBCURL() string {
	return fmt.Sprintf("jdbc:postgresql://%s:%s/%s", p.Host, strconv.Itoa(p.Port), p.Database)
}

// Validate checks that every field needed by Render is set.
func (p ConnectionProperties) Validate() error {
	switch {
	case p.Host == "":
		return fmt.Errorf("connection properties: host is required")
	case p.Port < 1 || p.Port > 65535:
		return fmt.Errorf("connection properties: port %d is out of range", p.Port)
	case p.Database == "":
		return fmt.Errorf("connection properties: database is required")
	case p.User == "":
		return fmt.Errorf("connection properties: user is required")
	case p.Password == "":
		return fmt.Errorf("connection properties: password is required")
	}
	return nil
}
