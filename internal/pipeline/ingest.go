package pipeline

import (
	"context"
	"fmt"

	exporterrors "odoo-exporter/internal/errors"
	"odoo-exporter/internal/model"
)

// DefaultBatchSize is the page size used when none is configured
const DefaultBatchSize = 500

// ------------------- Backend -------------------

// Backend is the slice of the remote API the pipeline needs. *odoo.Session
// implements it; tests use in-memory fakes.
type Backend interface {
	Search(ctx context.Context, modelName string, domain model.Domain, offset, limit int) ([]int64, error)
	Read(ctx context.Context, modelName string, ids []int64, fields []string) ([]map[string]interface{}, error)
	SearchRead(ctx context.Context, modelName string, domain model.Domain, fields []string, offset, limit int, order string) ([]map[string]interface{}, error)
}

// ------------------- Fetcher -------------------

// Fetcher pages through every record matching a query. Batches are fetched one
// after another; offsets advance by exactly the batch size.
type Fetcher struct {
	BatchSize int
	Strategy  model.FetchStrategy
	Observer  ProgressObserver
}

func NewFetcher(batchSize int, strategy model.FetchStrategy, observer ProgressObserver) *Fetcher {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if strategy == "" {
		strategy = model.SearchThenRead
	}
	if observer == nil {
		observer = noProgress{}
	}
	return &Fetcher{BatchSize: batchSize, Strategy: strategy, Observer: observer}
}

// Fetch collects all matching records in backend order. The loop stops at the
// first empty batch, so it costs ceil(N/L)+1 page calls for N matches.
//
// Any failure aborts the whole fetch: records collected so far are discarded
// and the returned fetch error carries how many there were.
func (f *Fetcher) Fetch(ctx context.Context, backend Backend, query model.QuerySpec) ([]model.RawRecord, error) {
	fmt.Printf("➡️ Starting fetch for model: %s (%s, batch %d)\n", query.Model, f.Strategy, f.BatchSize)

	allowed := make(map[string]bool, len(query.Fields)+1)
	allowed["id"] = true
	for _, field := range query.Fields {
		allowed[field] = true
	}

	var records []model.RawRecord
	for offset := 0; ; offset += f.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, f.abort(query, offset, len(records), err)
		}

		batch, err := f.nextBatch(ctx, backend, query, offset)
		if err != nil {
			return nil, f.abort(query, offset, len(records), err)
		}
		if len(batch) == 0 {
			break
		}

		for _, raw := range batch {
			records = append(records, Classify(restrict(raw, allowed)))
		}
		f.Observer.OnProgress(len(records))
	}

	fmt.Printf("✅ Finished fetch for model: %s (%d records)\n", query.Model, len(records))
	return records, nil
}

func (f *Fetcher) nextBatch(ctx context.Context, backend Backend, query model.QuerySpec, offset int) ([]map[string]interface{}, error) {
	switch f.Strategy {
	case model.SearchRead:
		return backend.SearchRead(ctx, query.Model, query.Domain, query.Fields, offset, f.BatchSize, "")
	case model.SearchThenRead:
		ids, err := backend.Search(ctx, query.Model, query.Domain, offset, f.BatchSize)
		if err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
		if len(ids) == 0 {
			return nil, nil
		}
		rows, err := backend.Read(ctx, query.Model, ids, query.Fields)
		if err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("unknown fetch strategy %q", f.Strategy)
	}
}

// restrict drops keys the query did not ask for, such as display_name or
// the __last_update some servers add to every row.
func restrict(raw map[string]interface{}, allowed map[string]bool) map[string]interface{} {
	for key := range raw {
		if !allowed[key] {
			out := make(map[string]interface{}, len(allowed))
			for k, v := range raw {
				if allowed[k] {
					out[k] = v
				}
			}
			return out
		}
	}
	return raw
}

func (f *Fetcher) abort(query model.QuerySpec, offset, collected int, cause error) error {
	fmt.Printf("❌ Fetch for model %s aborted at offset %d after %d records\n", query.Model, offset, collected)
	e := exporterrors.Wrap(exporterrors.Fetch,
		fmt.Sprintf("fetch %s aborted at offset %d", query.Model, offset), cause)
	e.Collected = collected
	return e
}
