// Package data embeds the database init scripts and reference fixtures.
package data

import (
	_ "embed"
)

//go:embed initdb/mariadb/002-ddl-tables.sql
var InitdbMariaDBTables string

//go:embed initdb/mariadb/003-ddl-privileges.sql
var InitdbMariaDBPrivileges string

//go:embed fixtures/ingredients.json
var Ingredients []byte

//go:embed fixtures/tags.json
var Tags []byte
