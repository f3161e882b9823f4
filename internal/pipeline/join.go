package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/graph-gophers/dataloader"

	exporterrors "odoo-exporter/internal/errors"
	"odoo-exporter/internal/model"
)

// DefaultJoin looks up the first related case pointing at each exported case.
// It is off unless enabled in configuration.
func DefaultJoin() model.JoinConfig {
	return model.JoinConfig{
		Model:      "dossie.dossie",
		ForeignKey: "dossie_id",
		LabelField: "name",
		Target:     "caso_relacionado",
	}
}

// Joiner attaches one related-record label per exported record. Record ids go
// through a request-scoped dataloader whose batch function issues a single
// search_read per batch of ids.
type Joiner struct {
	config    model.JoinConfig
	batchSize int
}

func NewJoiner(cfg model.JoinConfig, batchSize int) *Joiner {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if cfg.LabelField == "" {
		cfg.LabelField = "name"
	}
	if cfg.Target == "" {
		cfg.Target = cfg.Model
	}
	return &Joiner{config: cfg, batchSize: batchSize}
}

// Column is the name of the attached column
func (j *Joiner) Column() string { return j.config.Target }

// Join sets the target column on every record that carries an id: the label
// of the lowest-id related record pointing at it, or "" when there is none.
// Records without an id are left untouched.
func (j *Joiner) Join(ctx context.Context, backend Backend, records []model.GenericRecord) error {
	loader := dataloader.NewBatchedLoader(j.batchFn(backend),
		dataloader.WithBatchCapacity(j.batchSize),
		dataloader.WithWait(time.Millisecond),
	)

	var keys dataloader.Keys
	var targets []model.GenericRecord
	for _, rec := range records {
		id, ok := asID(rec["id"])
		if !ok || id <= 0 {
			continue
		}
		keys = append(keys, dataloader.StringKey(strconv.FormatInt(id, 10)))
		targets = append(targets, rec)
	}

	// One chunk at a time keeps a single lookup in flight.
	for start := 0; start < len(keys); start += j.batchSize {
		end := start + j.batchSize
		if end > len(keys) {
			end = len(keys)
		}

		thunk := loader.LoadMany(ctx, keys[start:end])
		labels, errs := thunk()
		for _, err := range errs {
			if err != nil {
				return exporterrors.Wrap(exporterrors.Resolution,
					fmt.Sprintf("join %s on %s", j.config.Model, j.config.ForeignKey), err)
			}
		}

		for i, label := range labels {
			s, _ := label.(string)
			targets[start+i][j.config.Target] = s
		}
	}

	fmt.Printf("🔗 Joined %s onto %d records\n", j.config.Model, len(targets))
	return nil
}

func (j *Joiner) batchFn(backend Backend) dataloader.BatchFunc {
	return func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		results := make([]*dataloader.Result, len(keys))

		ids := make([]int64, len(keys))
		for i, k := range keys {
			id, err := strconv.ParseInt(k.String(), 10, 64)
			if err != nil {
				for i := range results {
					results[i] = &dataloader.Result{Error: fmt.Errorf("invalid record id %q: %w", k.String(), err)}
				}
				return results
			}
			ids[i] = id
		}

		domain := model.Domain{[]interface{}{j.config.ForeignKey, "in", ids}}
		rows, err := backend.SearchRead(ctx, j.config.Model, domain,
			[]string{j.config.ForeignKey, j.config.LabelField}, 0, 0, "id asc")
		if err != nil {
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		// Rows arrive in ascending id order, so the first hit per key wins.
		first := make(map[int64]string, len(rows))
		for _, row := range rows {
			owner, ok := ownerID(row[j.config.ForeignKey])
			if !ok {
				continue
			}
			if _, seen := first[owner]; seen {
				continue
			}
			label, _ := row[j.config.LabelField].(string)
			first[owner] = label
		}

		for i, id := range ids {
			results[i] = &dataloader.Result{Data: first[id]}
		}
		return results
	}
}

// ownerID reads a many2one foreign key, which arrives as [id, label] or as a
// bare id depending on the server.
func ownerID(v interface{}) (int64, bool) {
	if pair, ok := v.([]interface{}); ok && len(pair) > 0 {
		return asID(pair[0])
	}
	return asID(v)
}
