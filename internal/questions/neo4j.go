package questions

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// fetchQuery matches every question whose index starts with the lookup key.
// Prefix matching means id 1 also matches the keys of 10, 11, ...
const fetchQuery = `MATCH (q:Question) WHERE q.LolQuestionIndex STARTS WITH $questionId
RETURN q.QuestionTitle AS title, q.QuestionDescription AS description, q.GoldenSolution AS answer
ORDER BY rand()
LIMIT 1`

// queryFunc runs a read query and returns its records.
type queryFunc func(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error)

// Neo4jConfig configures the graph database connection.
type Neo4jConfig struct {
	URI         string
	Username    string
	Password    string
	Database    string // empty selects the server default
	KeyTemplate string
	MaxPoolSize int
}

// Neo4jStore reads questions from a Neo4j graph. It never writes.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	template string
	query    queryFunc
	logger   *zap.Logger
}

// NewNeo4jStore wraps an already constructed driver. The caller owns the
// driver's lifecycle.
func NewNeo4jStore(driver neo4j.DriverWithContext, database, keyTemplate string, logger *zap.Logger) *Neo4jStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Neo4jStore{driver: driver, template: keyTemplate, logger: logger}
	s.query = func(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
		opts := []neo4j.ExecuteQueryConfigurationOption{neo4j.ExecuteQueryWithReadersRouting()}
		if database != "" {
			opts = append(opts, neo4j.ExecuteQueryWithDatabase(database))
		}
		res, err := neo4j.ExecuteQuery(ctx, driver, query, params, neo4j.EagerResultTransformer, opts...)
		if err != nil {
			return nil, err
		}
		return res.Records, nil
	}
	return s
}

// Open connects to Neo4j, verifies connectivity and returns a store that
// owns the driver. Close releases the connection pool.
func Open(ctx context.Context, cfg Neo4jConfig, logger *zap.Logger) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
		func(c *neo4j.Config) {
			if cfg.MaxPoolSize > 0 {
				c.MaxConnectionPoolSize = cfg.MaxPoolSize
			}
		})
	if err != nil {
		return nil, fmt.Errorf("%w: create driver: %v", ErrStoreUnavailable, err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("%w: verify connectivity to %s: %v", ErrStoreUnavailable, cfg.URI, err)
	}
	return NewNeo4jStore(driver, cfg.Database, cfg.KeyTemplate, logger), nil
}

// Close releases the driver's connection pool.
func (s *Neo4jStore) Close(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Close(ctx)
}

// Fetch returns one question whose key starts with LookupKey(id), picked at
// random among matches, or NoQuestion when there is none.
func (s *Neo4jStore) Fetch(ctx context.Context, questionID int) (Record, error) {
	key := LookupKey(s.template, questionID)

	records, err := s.query(ctx, fetchQuery, map[string]any{"questionId": key})
	if err != nil {
		s.logger.Warn("question query failed", zap.String("key", key), zap.Error(err))
		return Record{}, fmt.Errorf("%w: fetch %s: %v", ErrStoreUnavailable, key, err)
	}
	if len(records) == 0 {
		s.logger.Info("no question for key", zap.String("key", key))
		return NoQuestion, nil
	}

	rec := records[0]
	title, _, err := neo4j.GetRecordValue[string](rec, "title")
	if err != nil {
		return Record{}, fmt.Errorf("%w: decode title: %v", ErrStoreUnavailable, err)
	}
	description, _, err := neo4j.GetRecordValue[string](rec, "description")
	if err != nil {
		return Record{}, fmt.Errorf("%w: decode description: %v", ErrStoreUnavailable, err)
	}
	answer, _ := rec.Get("answer")

	return Record{
		Title:       title,
		Description: description,
		Answer:      formatAnswer(answer),
	}, nil
}

// formatAnswer renders a golden solution that may be stored as a string or
// as a list of accepted answers.
func formatAnswer(v any) string {
	switch a := v.(type) {
	case nil:
		return ""
	case string:
		return a
	case []any:
		parts := make([]string, 0, len(a))
		for _, p := range a {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(a)
	}
}
