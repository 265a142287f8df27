// Package factory is the entry point of redb-connect. A Factory resolves a
// connector type name to a backend adapter and forwards the uniform
// operations to it:
//
//	f := factory.New("sqlite", map[string]any{"database": "app", "path": dir}, false)
//	defer f.Close()
//	rows, diag, err := f.ExecuteStatement(ctx, "select * from test")
//
// Operations return a diagnostic string alongside their results. It is empty
// unless the factory was built for an unknown type, in which case no adapter
// exists, no I/O happens and the diagnostic lists the valid types.
//
// Importing this package links every adapter. The Db2 driver needs cgo and is
// only linked into builds with the db2 tag.
package factory
