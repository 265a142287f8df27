// Package connector provides the unified contract for all backend connectors.
//
// This package defines what backend-specific implementations must provide,
// enabling a consistent way to open a session and run work against any
// supported backend using only a connector type and a configuration map.
//
// # Architecture
//
// The connector package follows an interface-driven design with several key components:
//
//   - Connector: The interface every backend implements (validate, build address,
//     open session, run statement, run query to table, bulk load table, destroy)
//   - Session: An open backend handle owned by exactly one connector
//   - Lifecycle: The Unopened, Open, Closed state machine with idempotent teardown
//   - Validation: First-failure-wins required field checks plus advisory notes
//   - Registry: Maps connector types to constructors registered from backend init functions
//
// # Usage
//
// Backends register themselves with the global registry:
//
//	func init() {
//	    connector.Register(dbcapabilities.PostgreSQL, New)
//	}
//
// Most callers go through pkg/factory, which resolves the type and forwards calls:
//
//	f := factory.New("sqlite", map[string]any{"database": "t1", "path": dir}, false)
//	defer f.Close()
//
//	rows, diag, err := f.ExecuteStatement(ctx, "SELECT * FROM test")
//
// # Error Handling
//
// Validation failures are returned as results from ValidateConfig and
// BuildAddress. They become a ConfigurationError only when a session is
// required and none can be produced. Use the Is helpers to classify errors:
//
//	if connector.IsUnsupported(err) {
//	    // The backend does not serve this operation
//	}
//
// # Thread Safety
//
// Connectors are not safe for concurrent first use. Use one connector per
// goroutine or serialize session construction externally.
package connector
