package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/diwise/integration-sdk/pkg/adapter/instance"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	host     string
	user     string
	password string
	port     string
	dbname   string
	sslmode  string
}

// LoadConfiguration reads the connection settings from the identifiers and
// credential of an adapter instance
func LoadConfiguration(ai *instance.AdapterInstance) (Config, []string) {
	cfg := Config{
		host:    ai.IdentifierValueOrDefault("host", ""),
		port:    ai.IdentifierValueOrDefault("port", "5432"),
		dbname:  ai.IdentifierValueOrDefault("dbname", "postgres"),
		sslmode: ai.IdentifierValueOrDefault("sslmode", "disable"),
	}

	cfg.user, _ = ai.CredentialValue("username")
	cfg.password, _ = ai.CredentialValue("password")

	problems := []string{}

	if cfg.host == "" {
		problems = append(problems, "No PostgreSQL host found")
	}

	if port, err := strconv.Atoi(cfg.port); err != nil || port < 1 || port > 65535 {
		problems = append(problems, "PostgreSQL port must be an integer from 1-65535")
	}

	if cfg.user == "" || cfg.password == "" {
		problems = append(problems, "No credential found")
	}

	return cfg, problems
}

func (c Config) ConnStr() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.user, c.password, c.host, c.port, c.dbname, c.sslmode)
}

type statistics struct {
	database     string
	commits      float64
	rollbacks    float64
	blocksRead   float64
	blocksHit    float64
	deadlocks    float64
	locks        float64
	waitingLocks float64
}

type database interface {
	Databases(ctx context.Context) ([]string, error)
	Statistics(ctx context.Context) ([]statistics, error)
	Close()
}

type connectFunc func(ctx context.Context, cfg Config) (database, error)

type postgres struct {
	p *pgxpool.Pool
}

func connect(ctx context.Context, cfg Config) (database, error) {
	conn, err := pgxpool.New(ctx, cfg.ConnStr())
	if err != nil {
		return nil, err
	}

	err = conn.Ping(ctx)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &postgres{p: conn}, nil
}

func (pg *postgres) Close() {
	pg.p.Close()
}

func (pg *postgres) Databases(ctx context.Context) ([]string, error) {
	sql := `SELECT datname FROM pg_database WHERE NOT datistemplate ORDER BY datname;`

	rows, err := pg.p.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	databases := make([]string, 0)

	for rows.Next() {
		var d string
		err := rows.Scan(&d)
		if err != nil {
			return nil, err
		}
		databases = append(databases, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return databases, nil
}

func (pg *postgres) Statistics(ctx context.Context) ([]statistics, error) {
	sql := `
		SELECT s.datname,
			s.xact_commit, s.xact_rollback, s.blks_read, s.blks_hit, s.deadlocks,
			count(l.locktype) AS locks,
			count(l.locktype) FILTER (WHERE NOT l.granted) AS waiting
		FROM pg_stat_database s
		LEFT JOIN pg_locks l ON l.database = s.datid
		WHERE s.datname IS NOT NULL
		GROUP BY s.datname, s.xact_commit, s.xact_rollback, s.blks_read, s.blks_hit, s.deadlocks;`

	rows, err := pg.p.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]statistics, 0)

	for rows.Next() {
		var s statistics
		var commits, rollbacks, read, hit, deadlocks, locks, waiting int64

		err := rows.Scan(&s.database, &commits, &rollbacks, &read, &hit, &deadlocks, &locks, &waiting)
		if err != nil {
			return nil, err
		}

		s.commits, s.rollbacks = float64(commits), float64(rollbacks)
		s.blocksRead, s.blocksHit = float64(read), float64(hit)
		s.deadlocks = float64(deadlocks)
		s.locks, s.waitingLocks = float64(locks), float64(waiting)

		result = append(result, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
