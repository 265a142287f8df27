package dbcapabilities

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ConnectionDetails holds parsed connection information
type ConnectionDetails struct {
	DatabaseType string            `json:"database_type"`
	Host         string            `json:"host"`
	Port         int32             `json:"port"`
	Username     string            `json:"username"`
	Password     string            `json:"password"`
	DatabaseName string            `json:"database_name"`
	Path         string            `json:"path,omitempty"`
	SSL          bool              `json:"ssl"`
	SSLMode      string            `json:"ssl_mode"`
	Parameters   map[string]string `json:"parameters"`
}

// ParseConnectionString parses a connector address URI and returns connection details
func ParseConnectionString(connectionString string) (*ConnectionDetails, error) {
	if connectionString == "" {
		return nil, fmt.Errorf("connection string cannot be empty")
	}

	parsedURL, err := url.Parse(connectionString)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string format: %v", err)
	}

	scheme := strings.ToLower(parsedURL.Scheme)
	if scheme == "" {
		return nil, fmt.Errorf("connection string must include a scheme (e.g., postgresql://)")
	}

	dbType, ok := ParseID(scheme)
	if !ok {
		return nil, fmt.Errorf("unsupported database type: %s", scheme)
	}

	if !SupportsAddress(dbType) {
		return nil, fmt.Errorf("database type %s has no address form", string(dbType))
	}

	details := &ConnectionDetails{
		DatabaseType: string(dbType),
		Parameters:   make(map[string]string),
	}

	// File based databases carry a path instead of a host
	if dbType == SQLite {
		details.Path = parsedURL.Path
		idx := strings.LastIndex(parsedURL.Path, "/")
		details.DatabaseName = parsedURL.Path[idx+1:]
		return details, nil
	}

	if parsedURL.Hostname() == "" {
		return nil, fmt.Errorf("host is required in connection string")
	}
	details.Host = parsedURL.Hostname()

	if parsedURL.Port() != "" {
		port, err := strconv.Atoi(parsedURL.Port())
		if err != nil {
			return nil, fmt.Errorf("invalid port number: %s", parsedURL.Port())
		}
		details.Port = int32(port)
	} else {
		details.Port = int32(DefaultPort(dbType))
	}

	if parsedURL.User != nil {
		details.Username = parsedURL.User.Username()
		if password, hasPassword := parsedURL.User.Password(); hasPassword {
			details.Password = password
		}
	}

	if path := strings.Trim(parsedURL.Path, "/"); path != "" {
		details.DatabaseName = path
	}

	queryParams := parsedURL.Query()
	for key, values := range queryParams {
		if len(values) > 0 {
			details.Parameters[key] = values[0]
		}
	}
	if details.DatabaseName == "" {
		details.DatabaseName = details.Parameters["database"]
	}

	parseSSLConfiguration(details, dbType, queryParams)

	if details.Username == "" {
		return nil, fmt.Errorf("username is required in connection string")
	}

	return details, nil
}

// parseSSLConfiguration handles SSL-related parameters based on database type
func parseSSLConfiguration(details *ConnectionDetails, dbType DatabaseID, queryParams url.Values) {
	switch dbType {
	case PostgreSQL, Redshift:
		sslMode := queryParams.Get("sslmode")
		if sslMode == "" {
			sslMode = "prefer"
		}
		details.SSLMode = sslMode
		details.SSL = sslMode != "disable"
	case MySQL, MariaDB:
		tls := queryParams.Get("tls")
		details.SSL = tls == "true" || tls == "skip-verify"
		switch {
		case tls == "skip-verify":
			details.SSLMode = "prefer"
		case details.SSL:
			details.SSLMode = "require"
		default:
			details.SSLMode = "disable"
		}
	case Synapse:
		// Synapse endpoints always encrypt; the trust flag only relaxes verification
		details.SSL = true
		details.SSLMode = "require"
		if strings.EqualFold(queryParams.Get("TrustServerCertificate"), "yes") ||
			strings.EqualFold(queryParams.Get("TrustServerCertificate"), "true") {
			details.SSLMode = "prefer"
		}
	case Snowflake, Databricks:
		details.SSL = true
		details.SSLMode = "require"
	default:
		ssl := queryParams.Get("ssl")
		details.SSL = ssl == "true"
		if details.SSL {
			details.SSLMode = "require"
		} else {
			details.SSLMode = "disable"
		}
	}
}
