package models

import (
	"context"
	"database/sql/driver"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// JSON stores a typed value as a JSON column. Valid is false for SQL NULL.
type JSON[T any] struct {
	datatypes.JSONType[T]
	Valid bool
}

// NewJSON wraps a value as a non-null JSON column.
func NewJSON[T any](value T) JSON[T] {
	return JSON[T]{JSONType: datatypes.NewJSONType(value), Valid: true}
}

// Value writes NULL for an invalid value.
func (j JSON[T]) Value() (driver.Value, error) {
	if !j.Valid {
		return nil, nil
	}
	return j.JSONType.Value()
}

// GormValue shadows the embedded type's, which GORM prefers over Value.
func (j JSON[T]) GormValue(ctx context.Context, db *gorm.DB) clause.Expr {
	if !j.Valid {
		return clause.Expr{SQL: "NULL"}
	}
	return j.JSONType.GormValue(ctx, db)
}

// Scan accepts NULL in addition to the embedded type's []byte and string.
func (j *JSON[T]) Scan(value interface{}) error {
	if value == nil {
		*j = JSON[T]{}
		return nil
	}
	if err := j.JSONType.Scan(value); err != nil {
		return err
	}
	j.Valid = true
	return nil
}

// GormDBDataType ensures the correct data type is used for each database driver.
// MSSQL does not support the 'json' data type.
func (JSON[T]) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "JSON"
	}
	return "TEXT"
}

// ImageRef locates a stored image blob.
type ImageRef struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}
