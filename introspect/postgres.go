package introspect

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ridoystarlord/relgraph/database"
	"github.com/ridoystarlord/relgraph/schema"
)

// PostgresDescriber describes the tables of a PostgreSQL schema. Each table is
// an object, each column a field; a column carrying a foreign key becomes a
// reference field, and ON DELETE CASCADE marks it master-detail.
type PostgresDescriber struct {
	pool   *pgxpool.Pool
	schema string
}

type existingColumn struct {
	ColumnName string
	DataType   string
	IsNullable bool
	MaxLength  *int32
}

type existingForeignKey struct {
	ConstraintName  string
	ColumnName      string
	ReferencesTable string
	OnDelete        string
}

// NewPostgresDescriber describes tables in the given schema ("public" when
// empty) through pool.
func NewPostgresDescriber(pool *pgxpool.Pool, schemaName string) *PostgresDescriber {
	if schemaName == "" {
		schemaName = "public"
	}
	return &PostgresDescriber{pool: pool, schema: schemaName}
}

// ConnectPostgres describes tables of the database at DATABASE_URL.
func ConnectPostgres(schemaName string) (*PostgresDescriber, error) {
	pool, err := database.GetPool()
	if err != nil {
		return nil, fmt.Errorf("unable to get connection pool: %w", err)
	}
	return NewPostgresDescriber(pool, schemaName), nil
}

func (d *PostgresDescriber) ListObjects(ctx context.Context) ([]schema.ObjectSummary, error) {
	tablesQuery := `
	SELECT table_name
	FROM information_schema.tables
	WHERE table_schema = $1 AND table_type='BASE TABLE'
	ORDER BY table_name;
	`

	rows, err := d.pool.Query(ctx, tablesQuery, d.schema)
	if err != nil {
		return nil, fmt.Errorf("querying tables: %w", err)
	}
	defer rows.Close()

	var objects []schema.ObjectSummary
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		objects = append(objects, schema.ObjectSummary{
			Name:     tableName,
			Label:    tableLabel(tableName),
			IsCustom: schema.IsCustomName(tableName),
		})
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating table rows: %w", rows.Err())
	}

	return objects, nil
}

func (d *PostgresDescriber) Describe(ctx context.Context, objectName string) (schema.ObjectDescriptor, error) {
	columns, err := d.getColumns(ctx, objectName)
	if err != nil {
		return schema.ObjectDescriptor{}, describeErr(objectName, fmt.Errorf("getting columns: %w", err))
	}
	if len(columns) == 0 {
		return schema.ObjectDescriptor{}, describeErr(objectName, ErrObjectNotFound)
	}

	foreignKeys, err := d.getForeignKeys(ctx, objectName)
	if err != nil {
		return schema.ObjectDescriptor{}, describeErr(objectName, fmt.Errorf("getting foreign keys: %w", err))
	}

	return objectFromTable(objectName, columns, foreignKeys), nil
}

func (d *PostgresDescriber) getColumns(ctx context.Context, tableName string) ([]existingColumn, error) {
	columnsQuery := `
	SELECT
		c.column_name,
		c.data_type,
		(c.is_nullable = 'YES') as is_nullable,
		c.character_maximum_length
	FROM information_schema.columns c
	WHERE c.table_schema = $1 AND c.table_name = $2
	ORDER BY c.ordinal_position;
	`

	rows, err := d.pool.Query(ctx, columnsQuery, d.schema, tableName)
	if err != nil {
		return nil, fmt.Errorf("querying columns: %w", err)
	}
	defer rows.Close()

	var columns []existingColumn
	for rows.Next() {
		var col existingColumn
		if err := rows.Scan(
			&col.ColumnName,
			&col.DataType,
			&col.IsNullable,
			&col.MaxLength,
		); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		columns = append(columns, col)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating column rows: %w", rows.Err())
	}

	return columns, nil
}

func (d *PostgresDescriber) getForeignKeys(ctx context.Context, tableName string) ([]existingForeignKey, error) {
	foreignKeysQuery := `
	SELECT
		tc.constraint_name,
		kcu.column_name,
		ccu.table_name AS foreign_table_name,
		COALESCE(rc.delete_rule, 'NO ACTION')
	FROM information_schema.table_constraints AS tc
	JOIN information_schema.key_column_usage AS kcu
		ON tc.constraint_name = kcu.constraint_name
		AND tc.table_schema = kcu.table_schema
	JOIN information_schema.constraint_column_usage AS ccu
		ON ccu.constraint_name = tc.constraint_name
		AND ccu.table_schema = tc.table_schema
	LEFT JOIN information_schema.referential_constraints AS rc
		ON tc.constraint_name = rc.constraint_name
	WHERE tc.constraint_type = 'FOREIGN KEY'
		AND tc.table_schema = $1
		AND tc.table_name = $2
	ORDER BY kcu.ordinal_position, ccu.table_name;
	`

	rows, err := d.pool.Query(ctx, foreignKeysQuery, d.schema, tableName)
	if err != nil {
		return nil, fmt.Errorf("querying foreign keys: %w", err)
	}
	defer rows.Close()

	var foreignKeys []existingForeignKey
	for rows.Next() {
		var fk existingForeignKey
		if err := rows.Scan(
			&fk.ConstraintName,
			&fk.ColumnName,
			&fk.ReferencesTable,
			&fk.OnDelete,
		); err != nil {
			return nil, fmt.Errorf("scanning foreign key: %w", err)
		}
		foreignKeys = append(foreignKeys, fk)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating foreign key rows: %w", rows.Err())
	}

	return foreignKeys, nil
}

// objectFromTable folds introspected columns and foreign keys into a
// descriptor, keeping column order.
func objectFromTable(tableName string, columns []existingColumn, foreignKeys []existingForeignKey) schema.ObjectDescriptor {
	fksByColumn := map[string][]existingForeignKey{}
	for _, fk := range foreignKeys {
		fksByColumn[fk.ColumnName] = append(fksByColumn[fk.ColumnName], fk)
	}

	object := schema.ObjectDescriptor{
		Name:     tableName,
		Label:    tableLabel(tableName),
		IsCustom: schema.IsCustomName(tableName),
	}

	for _, col := range columns {
		field := schema.FieldDescriptor{
			Name:     col.ColumnName,
			Label:    tableLabel(col.ColumnName),
			Type:     fieldTypeFromPostgres(col.DataType),
			Nillable: col.IsNullable,
		}
		if col.MaxLength != nil {
			field.Length = int(*col.MaxLength)
		}

		if fks := fksByColumn[col.ColumnName]; len(fks) > 0 {
			field.Type = schema.Reference
			seen := map[string]bool{}
			for _, fk := range fks {
				if !seen[fk.ReferencesTable] {
					seen[fk.ReferencesTable] = true
					field.ReferenceTargets = append(field.ReferenceTargets, fk.ReferencesTable)
				}
				if strings.EqualFold(fk.OnDelete, "CASCADE") {
					field.IsCascadeDelete = true
				}
			}
		}

		object.Fields = append(object.Fields, field)
	}

	return object
}

func fieldTypeFromPostgres(dataType string) schema.FieldType {
	switch strings.ToLower(dataType) {
	case "integer", "smallint", "bigint":
		return schema.Integer
	case "numeric", "real", "double precision":
		return schema.Double
	case "boolean":
		return schema.Boolean
	case "date":
		return schema.Date
	case "timestamp without time zone", "timestamp with time zone":
		return schema.DateTime
	case "uuid":
		return schema.ID
	case "text":
		return schema.Text
	default:
		return schema.String
	}
}

// tableLabel turns snake_case identifiers into a display label.
func tableLabel(name string) string {
	parts := strings.Split(name, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
