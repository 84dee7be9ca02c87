// Package datarecording persists dispatch traces and other flat record types
// into SQLite databases.
package datarecording

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"strings"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// DataRecorder is a backend that can record and store data.
type DataRecorder interface {
	// CreateTable creates a new table whose columns are the fields of the
	// sample entry.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers one entry of the table's type for writing.
	InsertData(tableName string, entry any)

	// ListTables returns the names of all created tables.
	ListTables() []string

	// Flush writes all buffered entries into the database.
	Flush()
}

// NewSQLiteWriter creates a DataRecorder backed by a SQLite file at path. An
// empty path picks a unique name. The writer flushes on process exit.
func NewSQLiteWriter(path string) *SQLiteWriter {
	w := &SQLiteWriter{
		dbName:    path,
		batchSize: 100000,
		tables:    make(map[string]*tableBuffer),
	}

	atexit.Register(func() { w.Flush() })

	return w
}

// NewSQLiteWriterWithDB creates a DataRecorder on an already-open database.
func NewSQLiteWriterWithDB(db *sql.DB) *SQLiteWriter {
	w := &SQLiteWriter{
		DB:        db,
		batchSize: 100000,
		tables:    make(map[string]*tableBuffer),
	}

	atexit.Register(func() { w.Flush() })

	return w
}

type tableBuffer struct {
	structType reflect.Type
	entries    []any
}

// SQLiteWriter is the DataRecorder that writes into a SQLite database.
type SQLiteWriter struct {
	*sql.DB

	dbName     string
	tables     map[string]*tableBuffer
	batchSize  int
	entryCount int
}

// Init establishes the connection to the database. It must be called before
// the first CreateTable unless the writer was built around an existing
// database.
func (w *SQLiteWriter) Init() {
	if w.DB != nil {
		return
	}

	if w.dbName == "" {
		w.dbName = "cascade_trace_" + xid.New().String()
	}

	filename := w.dbName + ".sqlite3"

	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	fmt.Fprintf(os.Stderr, "Database created for recording: %s\n", filename)

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	w.DB = db
}

// CreateTable creates a table with one column per field of sampleEntry. All
// fields must be scalar.
func (w *SQLiteWriter) CreateTable(tableName string, sampleEntry any) {
	names := fieldNames(sampleEntry)

	createTableSQL := "CREATE TABLE " + tableName +
		" (\n\t" + strings.Join(names, ", \n\t") + "\n);"
	w.mustExecute(createTableSQL)

	w.tables[tableName] = &tableBuffer{
		structType: reflect.TypeOf(sampleEntry),
	}
}

// InsertData buffers one entry. Entries are written in batches; call Flush to
// force them out.
func (w *SQLiteWriter) InsertData(tableName string, entry any) {
	table, exists := w.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != table.structType {
		panic(fmt.Sprintf("entry type mismatch for table %s", tableName))
	}

	table.entries = append(table.entries, entry)

	w.entryCount++
	if w.entryCount >= w.batchSize {
		w.Flush()
	}
}

// ListTables returns the names of all created tables.
func (w *SQLiteWriter) ListTables() []string {
	tables := make([]string, 0, len(w.tables))
	for table := range w.tables {
		tables = append(tables, table)
	}

	return tables
}

// Flush writes all buffered entries inside one transaction.
func (w *SQLiteWriter) Flush() {
	if w.entryCount == 0 {
		return
	}

	w.mustExecute("BEGIN TRANSACTION")
	defer w.mustExecute("COMMIT TRANSACTION")

	for tableName, table := range w.tables {
		if len(table.entries) == 0 {
			continue
		}

		stmt := w.prepareStatement(tableName, table.entries[0])

		for _, entry := range table.entries {
			v := reflect.ValueOf(entry)

			args := make([]any, 0, v.NumField())
			for i := 0; i < v.NumField(); i++ {
				args = append(args, v.Field(i).Interface())
			}

			_, err := stmt.Exec(args...)
			if err != nil {
				panic(err)
			}
		}

		table.entries = nil

		stmt.Close()
	}

	w.entryCount = 0
}

func (w *SQLiteWriter) mustExecute(query string) sql.Result {
	res, err := w.Exec(query)
	if err != nil {
		fmt.Printf("Failed to execute: %s\n", query)
		panic(err)
	}

	return res
}

func (w *SQLiteWriter) prepareStatement(table string, entry any) *sql.Stmt {
	n := fieldNames(entry)
	for i := range n {
		n[i] = "?"
	}

	sqlStr := "INSERT INTO " + table +
		" VALUES (" + strings.Join(n, ", ") + ")"

	stmt, err := w.Prepare(sqlStr)
	if err != nil {
		panic(err)
	}

	return stmt
}

// fieldNames returns the field names of a flat struct, panicking on fields a
// SQLite column cannot hold.
func fieldNames(entry any) []string {
	t := reflect.TypeOf(entry)
	if t.Kind() != reflect.Struct {
		panic("entry must be a struct")
	}

	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !isAllowedType(field.Type.Kind()) {
			panic(fmt.Sprintf("field %s is not a scalar", field.Name))
		}
		names = append(names, field.Name)
	}

	return names
}

func isAllowedType(kind reflect.Kind) bool {
	switch kind {
	case
		reflect.Bool,
		reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64,
		reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64,
		reflect.Float32,
		reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}
