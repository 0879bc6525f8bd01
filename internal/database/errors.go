package database

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// MySQL and MariaDB server error numbers
const (
	mysqlDuplicateEntry  = 1062
	mysqlCheckViolated   = 3819
	mariadbCheckViolated = 4025
)

func mysqlErrorNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// IsDuplicateKey reports whether err is a unique constraint violation.
// Drivers without a GORM error translator are matched by message.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || mysqlErrorNumber(err) == mysqlDuplicateEntry {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, fragment := range []string{
		"unique constraint",   // sqlite, postgres
		"duplicate entry",     // mysql, mariadb
		"duplicate key",       // postgres, sqlserver
		"violation of unique", // sqlserver
	} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

// IsCheckViolation reports whether err is a CHECK constraint failure.
func IsCheckViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}
	switch mysqlErrorNumber(err) {
	case mysqlCheckViolated, mariadbCheckViolated:
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "check constraint")
}
