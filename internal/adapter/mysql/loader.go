package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"

	"github.com/couchcryptid/weather-etl-service/internal/config"
	"github.com/couchcryptid/weather-etl-service/internal/domain"
)

// DefaultTable is the sink table used by Load.
const DefaultTable = "weather"

const pingTimeout = 5 * time.Second

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// columns are written in this order by every INSERT.
var columns = []string{"city", "timestamp", "temperature", "humidity", "pressure", "weather"}

// Loader appends observation rows to a MySQL table. Each call opens and
// closes its own connection.
type Loader struct {
	cfg    config.DBConfig
	logger *slog.Logger
	open   func() (*sql.DB, error)
}

// NewLoader creates a Loader for the given sink settings.
func NewLoader(cfg config.DBConfig, logger *slog.Logger) *Loader {
	l := &Loader{cfg: cfg, logger: logger}
	l.open = l.openDB
	return l
}

func (l *Loader) openDB() (*sql.DB, error) {
	dc := mysqldriver.NewConfig()
	dc.User = l.cfg.User
	dc.Passwd = l.cfg.Password
	dc.Net = "tcp"
	dc.Addr = l.cfg.Addr()
	dc.DBName = l.cfg.Name
	dc.ParseTime = true
	dc.Loc = time.UTC

	connector, err := mysqldriver.NewConnector(dc)
	if err != nil {
		return nil, err
	}
	return sql.OpenDB(connector), nil
}

// Load appends table to the configured table, or DefaultTable when unset.
func (l *Loader) Load(ctx context.Context, table domain.ObservationTable) (int, error) {
	name := l.cfg.Table
	if name == "" {
		name = DefaultTable
	}
	return l.LoadInto(ctx, table, name)
}

// LoadInto creates sinkTable if absent and appends every row in one INSERT.
// Existing rows are never read, modified, or deduplicated against. It returns
// the number of rows appended.
func (l *Loader) LoadInto(ctx context.Context, table domain.ObservationTable, sinkTable string) (int, error) {
	if !identifierRe.MatchString(sinkTable) {
		return 0, &domain.SinkWriteError{Table: sinkTable, Rows: len(table), Err: errors.New("invalid table name")}
	}

	db, err := l.open()
	if err != nil {
		return 0, &domain.SinkConnectionError{Addr: l.cfg.Addr(), Err: err}
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return 0, &domain.SinkConnectionError{Addr: l.cfg.Addr(), Err: err}
	}

	if _, err := db.ExecContext(ctx, createTableSQL(sinkTable)); err != nil {
		return 0, &domain.SinkWriteError{Table: sinkTable, Rows: len(table), Err: fmt.Errorf("create table: %w", err)}
	}

	if len(table) == 0 {
		l.logger.Debug("nothing to append", "table", sinkTable)
		return 0, nil
	}

	query, args := insertSQL(sinkTable, table)
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, &domain.SinkWriteError{Table: sinkTable, Rows: len(table), Err: fmt.Errorf("insert: %w", err)}
	}

	n := len(table)
	if affected, err := res.RowsAffected(); err == nil {
		n = int(affected)
	}
	l.logger.Debug("rows appended", "table", sinkTable, "rows", n)
	return n, nil
}

func createTableSQL(table string) string {
	return "CREATE TABLE IF NOT EXISTS `" + table + "` (" +
		"`id` BIGINT AUTO_INCREMENT PRIMARY KEY, " +
		"`city` TEXT, " +
		"`timestamp` DATETIME, " +
		"`temperature` DOUBLE, " +
		"`humidity` DOUBLE, " +
		"`pressure` DOUBLE, " +
		"`weather` TEXT)"
}

func insertSQL(table string, rows domain.ObservationTable) (string, []any) {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = "`" + c + "`"
	}

	var b strings.Builder
	b.WriteString("INSERT INTO `" + table + "` (" + strings.Join(quoted, ", ") + ") VALUES ")

	rowPlaceholder := "(" + placeholders(len(columns)) + ")"
	args := make([]any, 0, len(rows)*len(columns))
	for i, r := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(rowPlaceholder)
		args = append(args, r.City, r.Timestamp.UTC(), r.Temperature, r.Humidity, r.Pressure, r.Weather)
	}
	return b.String(), args
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
