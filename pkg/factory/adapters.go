package factory

import (
	// Backend adapters register themselves with the connector registry.
	_ "github.com/redbco/redb-connect/internal/database/awsraw"
	_ "github.com/redbco/redb-connect/internal/database/databricks"
	_ "github.com/redbco/redb-connect/internal/database/db2"
	_ "github.com/redbco/redb-connect/internal/database/dynamodb"
	_ "github.com/redbco/redb-connect/internal/database/mysql"
	_ "github.com/redbco/redb-connect/internal/database/postgres"
	_ "github.com/redbco/redb-connect/internal/database/redshift"
	_ "github.com/redbco/redb-connect/internal/database/s3select"
	_ "github.com/redbco/redb-connect/internal/database/salesforce"
	_ "github.com/redbco/redb-connect/internal/database/snowflake"
	_ "github.com/redbco/redb-connect/internal/database/sqlite"
	_ "github.com/redbco/redb-connect/internal/database/synapse"
)
