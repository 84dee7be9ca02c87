package datarecording

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
)

// QueryParams encapsulates the optional parts of a table query.
type QueryParams struct {
	// Where holds the WHERE clause without the "WHERE" keyword.
	Where string

	// Args holds the arguments for the placeholders in Where.
	Args []any

	// Limit is the maximum number of records to return; 0 means no limit.
	Limit int

	// Offset is the number of records to skip.
	Offset int

	// OrderBy specifies sorting, without the "ORDER BY" keywords.
	OrderBy string
}

// DataReader reads previously recorded data back.
type DataReader interface {
	// MapTable establishes the mapping between a table and a Go struct
	// type. The mapping is required before querying the table.
	MapTable(tableName string, sampleEntry any)

	// ListTables returns all mapped tables.
	ListTables() []string

	// Query runs a query on a table, returning the matching entries and
	// the total number of rows matching Where regardless of pagination.
	Query(ctx context.Context, tableName string, params QueryParams) (
		results []any,
		totalCount int,
		err error,
	)

	// Close closes the reader.
	Close() error
}

// SQLiteReader reads data from a SQLite database written by SQLiteWriter.
type SQLiteReader struct {
	*sql.DB

	dbName  string
	typeMap map[string]reflect.Type
}

// NewSQLiteReader creates a DataReader on the SQLite file at path (without
// the .sqlite3 suffix).
func NewSQLiteReader(path string) *SQLiteReader {
	return &SQLiteReader{
		dbName:  path,
		typeMap: make(map[string]reflect.Type),
	}
}

// NewSQLiteReaderWithDB creates a DataReader on an already-open database.
func NewSQLiteReaderWithDB(db *sql.DB) *SQLiteReader {
	return &SQLiteReader{
		DB:      db,
		typeMap: make(map[string]reflect.Type),
	}
}

// Init establishes the connection to the database.
func (r *SQLiteReader) Init() {
	if r.DB != nil {
		return
	}

	db, err := sql.Open("sqlite3", r.dbName+".sqlite3")
	if err != nil {
		panic(err)
	}

	r.DB = db
}

// MapTable establishes the mapping between a table and a Go struct type.
func (r *SQLiteReader) MapTable(tableName string, sampleEntry any) {
	r.typeMap[tableName] = reflect.TypeOf(sampleEntry)
}

// ListTables returns all mapped tables.
func (r *SQLiteReader) ListTables() []string {
	tables := make([]string, 0, len(r.typeMap))
	for table := range r.typeMap {
		tables = append(tables, table)
	}

	return tables
}

// Query runs a query on a table.
func (r *SQLiteReader) Query(
	ctx context.Context,
	tableName string,
	params QueryParams,
) ([]any, int, error) {
	structType, ok := r.typeMap[tableName]
	if !ok {
		return nil, 0, fmt.Errorf("no mapping found for table: %s", tableName)
	}

	query := "SELECT * FROM " + tableName
	if params.Where != "" {
		query += " WHERE " + params.Where
	}
	if params.OrderBy != "" {
		query += " ORDER BY " + params.OrderBy
	}
	if params.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", params.Limit)
		if params.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", params.Offset)
		}
	}

	totalCount, err := r.queryTotalCount(ctx, tableName, params)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.QueryContext(ctx, query, params.Args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results, err := scanRows(rows, structType)
	if err != nil {
		return nil, 0, err
	}

	return results, totalCount, nil
}

// Close closes the reader.
func (r *SQLiteReader) Close() error {
	return r.DB.Close()
}

func (r *SQLiteReader) queryTotalCount(
	ctx context.Context,
	tableName string,
	params QueryParams,
) (int, error) {
	countQuery := "SELECT COUNT(*) FROM " + tableName
	if params.Where != "" {
		countQuery += " WHERE " + params.Where
	}

	var totalCount int
	err := r.DB.QueryRowContext(ctx, countQuery, params.Args...).
		Scan(&totalCount)
	if err != nil {
		return 0, err
	}

	return totalCount, nil
}

func scanRows(rows *sql.Rows, structType reflect.Type) ([]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	fieldIndex := make(map[string]int, structType.NumField())
	for i := 0; i < structType.NumField(); i++ {
		fieldIndex[structType.Field(i).Name] = i
	}

	var results []any
	for rows.Next() {
		entry := reflect.New(structType).Elem()

		targets := make([]any, len(columns))
		for i, col := range columns {
			if idx, ok := fieldIndex[col]; ok {
				targets[i] = entry.Field(idx).Addr().Interface()
			} else {
				var discard any
				targets[i] = &discard
			}
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}

		results = append(results, entry.Interface())
	}

	return results, rows.Err()
}
