// Package dbcapabilities provides a shared registry describing the connector
// types supported by redb-connect. Callers can import this package to make
// decisions based on uniform metadata (default ports, address support, bulk
// load support, paradigms) without constructing a connector.
//
// Minimal usage example:
//
//	import "github.com/redbco/redb-connect/pkg/dbcapabilities"
//
//	func canLoad(kind string) bool {
//	    id, ok := dbcapabilities.ParseID(kind)
//	    return ok && dbcapabilities.SupportsBulkLoad(id)
//	}
//
// The package exposes constants for IDs (e.g., dbcapabilities.PostgreSQL), the
// ordered Supported list, and a registry `All` for advanced consumers.
package dbcapabilities
