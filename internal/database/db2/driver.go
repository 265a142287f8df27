//go:build db2

package db2

import (
	_ "github.com/ibmdb/go_ibm_db" // Db2 driver, requires cgo and the IBM CLI driver
)
