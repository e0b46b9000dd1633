// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each concrete backend, which register
// their factories and DDL bootstrappers with the storage package. Importing
// it makes the "sqlite", "postgres", and "mysql" kinds available at runtime.
//
// A binary that only needs one backend can blank-import that backend package
// directly instead of this one.
package all

import (
	_ "storedw/internal/storage/mysql"
	_ "storedw/internal/storage/postgres"
	_ "storedw/internal/storage/sqlite"
)
