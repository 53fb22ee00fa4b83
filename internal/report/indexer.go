package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/fekuna/omnipos-stockcount-service/internal/cycle/dto"
	"github.com/fekuna/omnipos-stockcount-service/internal/logger"
	"go.uber.org/zap"
)

const DefaultIndex = "stockcount-reports"

const mapping = `{
	"mappings": {
		"properties": {
			"cycle_id": { "type": "keyword" },
			"company_id": { "type": "keyword" },
			"state": { "type": "keyword" },
			"finalized_at": { "type": "date" },
			"lines": {
				"type": "nested",
				"properties": {
					"sector_id": { "type": "keyword" },
					"product_id": { "type": "keyword" },
					"system_stock": { "type": "long" },
					"final_quantity": { "type": "long" },
					"difference": { "type": "long" },
					"recounted": { "type": "boolean" },
					"resolved": { "type": "boolean" }
				}
			}
		}
	}
}`

type Config struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
}

func NewClient(cfg *Config) (*elasticsearch.Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return es, nil
}

// Indexer stores finalized cycle reports, one document per cycle.
type Indexer interface {
	Index(ctx context.Context, r *dto.Report) error
}

type ElasticIndexer struct {
	es     *elasticsearch.Client
	index  string
	logger logger.ZapLogger

	ensureOnce sync.Once
}

func NewElasticIndexer(es *elasticsearch.Client, index string, log logger.ZapLogger) *ElasticIndexer {
	if index == "" {
		index = DefaultIndex
	}
	return &ElasticIndexer{es: es, index: index, logger: log}
}

// ensureIndex creates the index with its mapping the first time a report is
// written. An index that already exists is fine.
func (i *ElasticIndexer) ensureIndex(ctx context.Context) {
	i.ensureOnce.Do(func() {
		res, err := i.es.Indices.Create(i.index,
			i.es.Indices.Create.WithBody(strings.NewReader(mapping)),
			i.es.Indices.Create.WithContext(ctx),
		)
		if err != nil {
			i.logger.Warn("failed to create report index", zap.String("index", i.index), zap.Error(err))
			return
		}
		defer res.Body.Close()
		if res.IsError() && res.StatusCode != http.StatusBadRequest {
			i.logger.Warn("failed to create report index", zap.String("index", i.index), zap.String("status", res.Status()))
		}
	})
}

func (i *ElasticIndexer) Index(ctx context.Context, r *dto.Report) error {
	i.ensureIndex(ctx)

	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	res, err := i.es.Index(i.index, bytes.NewReader(body),
		i.es.Index.WithDocumentID(r.CycleID),
		i.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to index report %s: %w", r.CycleID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return fmt.Errorf("failed to index report %s: %s: %s", r.CycleID, res.Status(), msg)
	}
	i.logger.Info("Indexed cycle report",
		zap.String("cycle_id", r.CycleID),
		zap.Int("lines", len(r.Lines)),
	)
	return nil
}
