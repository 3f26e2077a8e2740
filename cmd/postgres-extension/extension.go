package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/diwise/integration-sdk/pkg/adapter"
	"github.com/diwise/integration-sdk/pkg/adapter/instance"
	"github.com/diwise/integration-sdk/pkg/adapter/types/objects"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

const (
	adapterKind string = "ExtendedPostgreSQL"
	adapterName string = "Extended PostgreSQL"

	// object types owned by the PostgreSQL management pack
	postgresAdapterType        string = "PostgreSQLAdapter"
	postgresDatabaseObjectType string = "postgresql_database"
)

type extension struct {
	connect    connectFunc
	definition definition
}

func newExtension(connect connectFunc) *extension {
	return &extension{
		connect:    connect,
		definition: newDefinition(),
	}
}

func (e *extension) test(ctx context.Context, ai *instance.AdapterInstance) *adapter.TestResult {
	log := logging.GetFromContext(ctx)
	result := adapter.NewTestResult()

	cfg, problems := LoadConfiguration(ai)
	if len(problems) > 0 {
		result.WithError(strings.Join(problems, ", "))
		return result
	}

	db, err := e.connect(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "err", err.Error())
		result.WithError("Unexpected connection test error: " + err.Error())
		return result
	}
	defer db.Close()

	databases, err := db.Databases(ctx)
	if err != nil {
		log.Error("failed to list databases", "err", err.Error())
		result.WithError("Unexpected connection test error: " + err.Error())
		return result
	}

	for _, d := range databases {
		log.Info("found database", "database", d)
	}

	return result
}

// the PostgreSQL protocol is not https, so there are no certificates to trust
func (e *extension) endpointURLs(context.Context, *instance.AdapterInstance) *adapter.EndpointResult {
	return adapter.NewEndpointResult()
}

func (e *extension) collect(ctx context.Context, ai *instance.AdapterInstance) *adapter.CollectResult {
	log := logging.GetFromContext(ctx)
	started := time.Now()

	result, _ := adapter.NewCollectResult(adapter.WithDefinition(e.definition))

	cfg, problems := LoadConfiguration(ai)
	if len(problems) > 0 {
		result.WithError(strings.Join(problems, ", "))
		return result
	}

	db, err := e.connect(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "err", err.Error())
		result.WithError("Unexpected collection error: " + err.Error())
		return result
	}
	defer db.Close()

	names, err := db.Databases(ctx)
	if err != nil {
		log.Error("failed to list databases", "err", err.Error())
		result.WithError("Unexpected collection error: " + err.Error())
		return result
	}

	qualified := make([]string, 0, len(names))
	for _, n := range names {
		qualified = append(qualified, fmt.Sprintf("%s/%s", cfg.host, n))
	}

	suiteAPI := ai.SuiteAPIClient()
	defer suiteAPI.Close(ctx)

	found := suiteAPI.QueryForResources(ctx, map[string]any{
		"adapterKind":  []string{postgresAdapterType},
		"resourceKind": []string{postgresDatabaseObjectType},
		"name":         qualified,
	})

	databases := map[string]*objects.Object{}
	for _, obj := range found {
		databases[obj.IdentifierValueOrDefault("database_name", obj.Name())] = obj
		if err := result.AddObject(obj); err != nil {
			log.Warn("could not add database to result", "err", err.Error())
		}
	}

	stats, err := db.Statistics(ctx)
	if err != nil {
		log.Error("failed to query database statistics", "err", err.Error())
		result.WithError("Unexpected collection error: " + err.Error())
		return result
	}

	for _, s := range stats {
		obj, ok := databases[s.database]
		if !ok {
			log.Info("database not found in operations manager", "database", s.database)
			continue
		}
		addStatistics(obj, s)
	}

	ai.WithMetric("Collection|Duration", float64(time.Since(started).Milliseconds()))
	ai.WithMetric("Collection|Databases", float64(len(databases)))
	if err := result.AddObject(ai.Object); err != nil {
		log.Warn("could not add adapter instance to result", "err", err.Error())
	}

	return result
}

func addStatistics(obj *objects.Object, s statistics) {
	obj.WithMetric("Table Locks|Count", s.locks)
	obj.WithMetric("Table Locks|Waiting", s.waitingLocks)
	obj.WithMetric("Transactions|Commits", s.commits)
	obj.WithMetric("Transactions|Rollbacks", s.rollbacks)
	obj.WithMetric("Deadlocks", s.deadlocks)

	if total := s.blocksHit + s.blocksRead; total > 0 {
		obj.WithMetric("Cache|Hit Ratio", s.blocksHit/total*100)
	} else {
		obj.WithMetric("Cache|Hit Ratio", 0)
	}
}

func (e *extension) adapterDefinition(context.Context) any {
	return e.definition
}
