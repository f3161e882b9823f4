package pipeline

import (
	"context"
	"testing"

	exporterrors "odoo-exporter/internal/errors"
	"odoo-exporter/internal/model"
)

func joinConfig() model.JoinConfig {
	return model.JoinConfig{
		Enabled:    true,
		Model:      relatedModel,
		ForeignKey: "dossie_id",
		LabelField: "name",
		Target:     "caso_relacionado",
	}
}

func related(id, owner int64, name string) map[string]interface{} {
	return map[string]interface{}{
		"id":        id,
		"dossie_id": []interface{}{owner, "owner"},
		"name":      name,
	}
}

func TestJoinAttachesFirstRelated(t *testing.T) {
	backend := newFakeBackend(nil)
	backend.related = []map[string]interface{}{
		related(40, 1, "Later"),
		related(12, 1, "Earliest"),
		related(30, 3, "Only"),
	}

	records := []model.GenericRecord{
		{"id": int64(1)},
		{"id": int64(2)},
		{"id": int64(3)},
		{"name": "no id"},
	}
	if err := NewJoiner(joinConfig(), 500).Join(context.Background(), backend, records); err != nil {
		t.Fatalf("Join: %v", err)
	}

	want := []string{"Earliest", "", "Only"}
	for i, w := range want {
		if got := records[i]["caso_relacionado"]; got != w {
			t.Fatalf("record %d: got %v, want %q", i, got, w)
		}
	}
	if _, ok := records[3]["caso_relacionado"]; ok {
		t.Fatalf("record without id must be left untouched")
	}
	if got := backend.count("search_read", relatedModel); got != 1 {
		t.Fatalf("expected one batched lookup, got %d", got)
	}
}

func TestJoinBatchesByCapacity(t *testing.T) {
	backend := newFakeBackend(nil)
	records := make([]model.GenericRecord, 5)
	for i := range records {
		records[i] = model.GenericRecord{"id": int64(i + 1)}
	}

	if err := NewJoiner(joinConfig(), 2).Join(context.Background(), backend, records); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if got := backend.count("search_read", relatedModel); got != 3 {
		t.Fatalf("expected 3 lookups for 5 ids in batches of 2, got %d", got)
	}
}

func TestJoinFailure(t *testing.T) {
	backend := newFakeBackend(nil)
	backend.failAt["search_read "+relatedModel] = 1

	err := NewJoiner(joinConfig(), 10).Join(context.Background(), backend, []model.GenericRecord{{"id": int64(1)}})
	if !exporterrors.Is(err, exporterrors.Resolution) {
		t.Fatalf("expected resolution error, got %v", err)
	}
}
