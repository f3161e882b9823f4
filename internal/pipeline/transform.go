package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	exporterrors "odoo-exporter/internal/errors"
	"odoo-exporter/internal/model"
)

// labelSeparator joins the labels of a many-valued field
const labelSeparator = ", "

// DefaultReferences is the partner lookup used by the legal-case export: the
// three party fields carry bare res.partner ids.
func DefaultReferences() []model.ReferenceConfig {
	return []model.ReferenceConfig{{
		Model:      "res.partner",
		LabelField: "name",
		Fields:     []string{"parte_contraria_ids", "parte_representada_ids", "advogado_adverso_ids"},
	}}
}

// Resolver replaces every relational value with a display string. Labels for
// bare-id fields come from one batched read per foreign entity kind, run
// before any record is normalized.
type Resolver struct {
	kinds  []model.ReferenceConfig
	policy model.ReferencePolicy
	kindOf map[string]int // reference field -> index in kinds
}

func NewResolver(kinds []model.ReferenceConfig, policy model.ReferencePolicy) *Resolver {
	if policy == "" {
		policy = model.AllIDs
	}
	r := &Resolver{kinds: kinds, policy: policy, kindOf: make(map[string]int)}
	for i, k := range kinds {
		for _, field := range k.Fields {
			r.kindOf[field] = i
		}
	}
	return r
}

// Resolve normalizes records in input order. Each raw record slot is cleared
// once its normalized form exists. A failed lookup batch fails the whole run
// with a resolution error; ids the lookup did not return fall back to their
// decimal form.
func (r *Resolver) Resolve(ctx context.Context, backend Backend, records []model.RawRecord) ([]model.GenericRecord, error) {
	pending := r.collect(records)

	labels := make([]map[int64]string, len(r.kinds))
	for i, ids := range pending {
		if len(ids) == 0 {
			continue
		}
		found, err := r.lookup(ctx, backend, r.kinds[i], ids)
		if err != nil {
			return nil, exporterrors.Wrap(exporterrors.Resolution,
				fmt.Sprintf("look up %d %s labels", len(ids), r.kinds[i].Model), err)
		}
		labels[i] = found
		fmt.Printf("🔄 Resolved %d of %d %s labels\n", len(found), len(ids), r.kinds[i].Model)
	}

	out := make([]model.GenericRecord, len(records))
	for i, rec := range records {
		out[i] = r.normalize(rec, labels)
		records[i] = nil
	}
	return out, nil
}

// collect unions the ids of every reference field into one sorted set per
// entity kind, after applying the reference policy.
func (r *Resolver) collect(records []model.RawRecord) [][]int64 {
	sets := make([]map[int64]struct{}, len(r.kinds))
	for _, rec := range records {
		for field, v := range rec {
			k, ok := r.kindOf[field]
			if !ok || v.Kind != model.ManyToManyIDs {
				continue
			}
			if sets[k] == nil {
				sets[k] = make(map[int64]struct{})
			}
			for _, id := range r.pick(v.IDs) {
				sets[k][id] = struct{}{}
			}
		}
	}

	pending := make([][]int64, len(r.kinds))
	for k, set := range sets {
		ids := make([]int64, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
		pending[k] = ids
	}
	return pending
}

func (r *Resolver) lookup(ctx context.Context, backend Backend, kind model.ReferenceConfig, ids []int64) (map[int64]string, error) {
	labelField := kind.LabelField
	if labelField == "" {
		labelField = "name"
	}
	rows, err := backend.Read(ctx, kind.Model, ids, []string{labelField})
	if err != nil {
		return nil, err
	}
	found := make(map[int64]string, len(rows))
	for _, row := range rows {
		id, ok := asID(row["id"])
		if !ok {
			continue
		}
		if label, ok := row[labelField].(string); ok {
			found[id] = label
		}
	}
	return found, nil
}

// pick applies the reference policy to one field's ids
func (r *Resolver) pick(ids []int64) []int64 {
	if r.policy == model.FirstID && len(ids) > 1 {
		return ids[:1]
	}
	return ids
}

func (r *Resolver) normalize(rec model.RawRecord, labels []map[int64]string) model.GenericRecord {
	out := make(model.GenericRecord, len(rec))
	for field, v := range rec {
		out[field] = r.normalizeValue(field, v, labels)
	}
	return out
}

func (r *Resolver) normalizeValue(field string, v model.RelationValue, labels []map[int64]string) interface{} {
	k, isRef := r.kindOf[field]

	switch v.Kind {
	case model.ManyToOne:
		return v.Label
	case model.ManyToManyLabeled:
		return strings.Join(v.Labels, labelSeparator)
	case model.ManyToManyIDs:
		ids := v.IDs
		if isRef {
			ids = r.pick(ids)
		}
		names := make([]string, len(ids))
		for i, id := range ids {
			names[i] = strconv.FormatInt(id, 10)
			if isRef {
				if label, ok := labels[k][id]; ok {
					names[i] = label
				}
			}
		}
		return strings.Join(names, labelSeparator)
	default:
		if isRef {
			if id, ok := asID(v.Value); ok {
				if label, ok := labels[k][id]; ok {
					return label
				}
			}
		}
		return v.Value
	}
}
