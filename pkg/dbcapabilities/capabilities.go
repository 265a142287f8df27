package dbcapabilities

import "strings"

// DatabaseID is the canonical identifier for a connector type supported by redb-connect.
// Use these constants to look up capability information.
type DatabaseID string

const (
	// Relational SQL
	SQLite     DatabaseID = "sqlite"
	PostgreSQL DatabaseID = "postgre"
	MySQL      DatabaseID = "mysql"
	MariaDB    DatabaseID = "mariadb"
	Redshift   DatabaseID = "redshift"
	Synapse    DatabaseID = "synapse"
	DB2        DatabaseID = "db2"

	// Analytics / Cloud warehouses
	Snowflake  DatabaseID = "snowflake"
	Databricks DatabaseID = "databricks"

	// NoSQL / Other paradigms
	DynamoDB   DatabaseID = "dynamodb"
	Salesforce DatabaseID = "salesforce"

	// Object Storage
	S3Select DatabaseID = "s3select"

	// Cloud
	AWS DatabaseID = "aws"
)

// Supported lists every connector type in the order it is presented to users.
var Supported = []DatabaseID{
	SQLite,
	PostgreSQL,
	MySQL,
	MariaDB,
	Snowflake,
	Redshift,
	Salesforce,
	S3Select,
	AWS,
	Databricks,
	Synapse,
	DB2,
	DynamoDB,
}

// DataParadigm enumerates the primary data paradigms a connector exposes.
type DataParadigm string

const (
	ParadigmRelational  DataParadigm = "relational"    // Tables, schemas, SQL
	ParadigmKeyValue    DataParadigm = "keyvalue"      // Key/Value
	ParadigmColumnar    DataParadigm = "columnar"      // Columnar analytics
	ParadigmObjectStore DataParadigm = "objectstorage" // Object/blob storage
	ParadigmCRM         DataParadigm = "crm"           // SaaS record APIs
	ParadigmCloud       DataParadigm = "cloud"         // Raw cloud credentials
)

// Capability describes what a connector supports in a way callers can consume uniformly.
type Capability struct {
	// Human-friendly vendor or product name, e.g., "PostgreSQL".
	Name string `json:"name" yaml:"name"`

	// Canonical ID used across the codebase (see DatabaseID constants), e.g., "postgre".
	ID DatabaseID `json:"id" yaml:"id"`

	// Port used when the configuration omits one. Zero when not network addressed by port.
	DefaultPort int `json:"defaultPort,omitempty" yaml:"defaultPort,omitempty"`

	// Whether the connector can render its connection details as a URI address.
	SupportsAddress bool `json:"supportsAddress" yaml:"supportsAddress"`

	// Whether statements and queries can be run through the connector.
	SupportsQuery bool `json:"supportsQuery" yaml:"supportsQuery"`

	// Whether tabular data can be written to a destination table.
	SupportsBulkLoad bool `json:"supportsBulkLoad" yaml:"supportsBulkLoad"`

	// Primary data paradigms supported.
	Paradigms []DataParadigm `json:"paradigms" yaml:"paradigms"`

	// Common aliases (driver names, env labels) that map to this connector.
	Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// All is a registry of capabilities keyed by the canonical connector ID.
var All = map[DatabaseID]Capability{
	SQLite: {
		Name:             "SQLite",
		ID:               SQLite,
		SupportsAddress:  true,
		SupportsQuery:    true,
		SupportsBulkLoad: true,
		Paradigms:        []DataParadigm{ParadigmRelational},
		Aliases:          []string{"sqlite3"},
	},
	PostgreSQL: {
		Name:             "PostgreSQL",
		ID:               PostgreSQL,
		DefaultPort:      5432,
		SupportsAddress:  true,
		SupportsQuery:    true,
		SupportsBulkLoad: true,
		Paradigms:        []DataParadigm{ParadigmRelational},
		Aliases:          []string{"postgres", "postgresql", "pgsql"},
	},
	MySQL: {
		Name:             "MySQL",
		ID:               MySQL,
		DefaultPort:      3306,
		SupportsAddress:  true,
		SupportsQuery:    true,
		SupportsBulkLoad: true,
		Paradigms:        []DataParadigm{ParadigmRelational},
		Aliases:          []string{"aurora-mysql"},
	},
	MariaDB: {
		Name:             "MariaDB",
		ID:               MariaDB,
		DefaultPort:      3306,
		SupportsAddress:  true,
		SupportsQuery:    true,
		SupportsBulkLoad: true,
		Paradigms:        []DataParadigm{ParadigmRelational},
	},
	Snowflake: {
		Name:             "Snowflake",
		ID:               Snowflake,
		SupportsAddress:  true,
		SupportsQuery:    true,
		SupportsBulkLoad: true,
		Paradigms:        []DataParadigm{ParadigmRelational, ParadigmColumnar},
	},
	Redshift: {
		Name:             "Amazon Redshift",
		ID:               Redshift,
		DefaultPort:      5439,
		SupportsAddress:  true,
		SupportsQuery:    true,
		SupportsBulkLoad: true,
		Paradigms:        []DataParadigm{ParadigmRelational, ParadigmColumnar},
	},
	Salesforce: {
		Name:          "Salesforce",
		ID:            Salesforce,
		SupportsQuery: true,
		Paradigms:     []DataParadigm{ParadigmCRM},
		Aliases:       []string{"sfdc"},
	},
	S3Select: {
		Name:          "Amazon S3 Select",
		ID:            S3Select,
		SupportsQuery: true,
		Paradigms:     []DataParadigm{ParadigmObjectStore},
		Aliases:       []string{"s3", "s3-select"},
	},
	AWS: {
		Name:      "Amazon Web Services",
		ID:        AWS,
		Paradigms: []DataParadigm{ParadigmCloud},
	},
	Databricks: {
		Name:             "Databricks",
		ID:               Databricks,
		DefaultPort:      443,
		SupportsAddress:  true,
		SupportsQuery:    true,
		SupportsBulkLoad: true,
		Paradigms:        []DataParadigm{ParadigmRelational, ParadigmColumnar},
	},
	Synapse: {
		Name:             "Azure Synapse Analytics",
		ID:               Synapse,
		DefaultPort:      1433,
		SupportsAddress:  true,
		SupportsQuery:    true,
		SupportsBulkLoad: true,
		Paradigms:        []DataParadigm{ParadigmRelational, ParadigmColumnar},
		Aliases:          []string{"azure_synapse", "sqlserver", "mssql"},
	},
	DB2: {
		Name:             "IBM Db2",
		ID:               DB2,
		DefaultPort:      50000,
		SupportsAddress:  true,
		SupportsQuery:    true,
		SupportsBulkLoad: true,
		Paradigms:        []DataParadigm{ParadigmRelational},
		Aliases:          []string{"ibmdb2"},
	},
	DynamoDB: {
		Name:          "Amazon DynamoDB",
		ID:            DynamoDB,
		SupportsQuery: true,
		Paradigms:     []DataParadigm{ParadigmKeyValue},
		Aliases:       []string{"dynamo"},
	},
}

var nameToID = func() map[string]DatabaseID {
	m := make(map[string]DatabaseID, len(All)*2)
	for id, c := range All {
		m[strings.ToLower(string(id))] = id
		for _, a := range c.Aliases {
			m[strings.ToLower(a)] = id
		}
	}
	return m
}()

// ParseID resolves a free-form name (id or alias) into a canonical DatabaseID.
func ParseID(name string) (DatabaseID, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return "", false
	}
	id, ok := nameToID[n]
	return id, ok
}

// GetByName returns the Capability by looking up using a free-form name (id or alias).
func GetByName(name string) (Capability, bool) {
	if id, ok := ParseID(name); ok {
		return Get(id)
	}
	return Capability{}, false
}

// IDs returns the list of all known connector IDs in presentation order.
func IDs() []DatabaseID {
	out := make([]DatabaseID, len(Supported))
	copy(out, Supported)
	return out
}

// Names returns the canonical connector names in presentation order.
func Names() []string {
	out := make([]string, 0, len(Supported))
	for _, id := range Supported {
		out = append(out, string(id))
	}
	return out
}

// Get returns capabilities for the given ID and a boolean indicating existence.
func Get(id DatabaseID) (Capability, bool) {
	c, ok := All[id]
	return c, ok
}

// MustGet returns capabilities for the given ID and panics if not found.
func MustGet(id DatabaseID) Capability {
	c, ok := Get(id)
	if !ok {
		panic("dbcapabilities: unknown database id: " + string(id))
	}
	return c
}

// SupportsParadigm reports whether the connector supports a given data paradigm.
func SupportsParadigm(id DatabaseID, p DataParadigm) bool {
	c, ok := Get(id)
	if !ok {
		return false
	}
	for _, dp := range c.Paradigms {
		if dp == p {
			return true
		}
	}
	return false
}

// SupportsAddress reports whether the connector renders a URI address.
func SupportsAddress(id DatabaseID) bool {
	c, ok := Get(id)
	return ok && c.SupportsAddress
}

// SupportsBulkLoad reports whether the connector can write tables.
func SupportsBulkLoad(id DatabaseID) bool {
	c, ok := Get(id)
	return ok && c.SupportsBulkLoad
}

// DefaultPort returns the default port for a connector, or zero.
func DefaultPort(id DatabaseID) int {
	c, ok := Get(id)
	if !ok {
		return 0
	}
	return c.DefaultPort
}
