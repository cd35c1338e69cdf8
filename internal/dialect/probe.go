package dialect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoProbe is returned for drivers without a version query.
var ErrNoProbe = errors.New("no probe for driver")

// Probe is what detection knows about a live connection.
type Probe struct {
	ProductName    string
	ProductVersion string
	Major          int
	Minor          int
	Micro          int
	// HasVersion is set when Major/Minor/Micro were reported numerically.
	HasVersion bool
	DriverName string
	UserName   string
	Catalog    string
}

// Version returns the numeric version, parsing ProductVersion when the
// driver did not report one.
func (p Probe) Version() (Version, bool) {
	if p.HasVersion {
		return Version{p.Major, p.Minor, p.Micro}, true
	}
	return ParseVersion(p.ProductVersion)
}

// RowQuerier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type RowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ProbeConnection collects the product name, version and user of a live
// connection with a driver specific query.
func ProbeConnection(ctx context.Context, db RowQuerier, driverName string) (Probe, error) {
	p := Probe{DriverName: driverName}
	var err error
	switch strings.ToLower(driverName) {
	case "postgres", "pgx":
		err = probePostgres(ctx, db, &p)
	case "mysql":
		err = probeMySQL(ctx, db, &p)
	case "mssql", "sqlserver":
		err = probeMSSQL(ctx, db, &p)
	case "oracle":
		err = probeOracle(ctx, db, &p)
	case "sqlite", "sqlite3":
		err = probeSQLite(ctx, db, &p)
	default:
		return p, fmt.Errorf("%w: %s", ErrNoProbe, driverName)
	}
	if err != nil {
		return p, fmt.Errorf("probe %s connection: %w", driverName, err)
	}
	return p, nil
}

func probePostgres(ctx context.Context, db RowQuerier, p *Probe) error {
	var versionNum string
	row := db.QueryRowContext(ctx, `SELECT version(), current_setting('server_version_num'), current_user, current_database()`)
	if err := row.Scan(&p.ProductVersion, &versionNum, &p.UserName, &p.Catalog); err != nil {
		return err
	}
	// CockroachDB answers with the PostgreSQL version it emulates.
	if strings.Contains(p.ProductVersion, "CockroachDB") {
		p.ProductName = "CockroachDB"
		return nil
	}
	p.ProductName = "PostgreSQL"
	if n, err := strconv.Atoi(versionNum); err == nil {
		p.Major = n / 10000
		if p.Major >= 10 {
			p.Minor = n % 10000
		} else {
			p.Minor = (n / 100) % 100
			p.Micro = n % 100
		}
		p.HasVersion = true
	}
	return nil
}

func probeMySQL(ctx context.Context, db RowQuerier, p *Probe) error {
	var user, catalog sql.NullString
	row := db.QueryRowContext(ctx, `SELECT VERSION(), CURRENT_USER(), DATABASE()`)
	if err := row.Scan(&p.ProductVersion, &user, &catalog); err != nil {
		return err
	}
	p.ProductName = "MySQL"
	if strings.Contains(strings.ToLower(p.ProductVersion), "mariadb") {
		p.ProductName = "MariaDB"
	}
	// CURRENT_USER() is user@host.
	p.UserName, _, _ = strings.Cut(user.String, "@")
	p.Catalog = catalog.String
	return nil
}

func probeMSSQL(ctx context.Context, db RowQuerier, p *Probe) error {
	var user, catalog sql.NullString
	row := db.QueryRowContext(ctx, `SELECT @@VERSION, SUSER_SNAME(), DB_NAME()`)
	if err := row.Scan(&p.ProductVersion, &user, &catalog); err != nil {
		return err
	}
	switch {
	case strings.HasPrefix(p.ProductVersion, "Adaptive Server Enterprise"):
		p.ProductName = "Adaptive Server Enterprise"
	default:
		p.ProductName = "Microsoft SQL Server"
	}
	p.UserName = user.String
	p.Catalog = catalog.String
	return nil
}

func probeOracle(ctx context.Context, db RowQuerier, p *Probe) error {
	row := db.QueryRowContext(ctx, `SELECT (SELECT BANNER FROM V$VERSION WHERE ROWNUM = 1), USER FROM DUAL`)
	if err := row.Scan(&p.ProductVersion, &p.UserName); err != nil {
		return err
	}
	p.ProductName = "Oracle"
	return nil
}

func probeSQLite(ctx context.Context, db RowQuerier, p *Probe) error {
	if err := db.QueryRowContext(ctx, `SELECT sqlite_version()`).Scan(&p.ProductVersion); err != nil {
		return err
	}
	p.ProductName = "SQLite"
	return nil
}
