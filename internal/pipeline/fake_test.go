package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"odoo-exporter/internal/model"
)

const (
	caseModel    = "dossie.dossie"
	partnerModel = "res.partner"
	relatedModel = "dossie.relacionado"
)

// fakeBackend serves one paged model, a partner table and a related model
// from memory, and records every call.
type fakeBackend struct {
	mu sync.Mutex

	records  []map[string]interface{}
	partners map[int64]string
	related  []map[string]interface{}

	calls  []string
	counts map[string]int
	failAt map[string]int // method -> 1-based call number that fails

	// extraKeys adds unrequested keys to every case row, as servers that
	// append display_name do
	extraKeys bool
}

func newFakeBackend(records []map[string]interface{}) *fakeBackend {
	return &fakeBackend{
		records:  records,
		partners: map[int64]string{},
		counts:   map[string]int{},
		failAt:   map[string]int{},
	}
}

// caseRecords builds n records with ids 1..n
func caseRecords(n int) []map[string]interface{} {
	out := make([]map[string]interface{}, n)
	for i := range out {
		out[i] = map[string]interface{}{
			"id":   int64(i + 1),
			"name": fmt.Sprintf("Case %d", i+1),
		}
	}
	return out
}

func (f *fakeBackend) hit(method, modelName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := method + " " + modelName
	f.calls = append(f.calls, key)
	f.counts[key]++
	if n, ok := f.failAt[key]; ok && f.counts[key] == n {
		return errors.New("connection reset by peer")
	}
	return nil
}

func (f *fakeBackend) count(method, modelName string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[method+" "+modelName]
}

func (f *fakeBackend) page(offset, limit int) []map[string]interface{} {
	if offset >= len(f.records) {
		return nil
	}
	end := len(f.records)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return f.records[offset:end]
}

func (f *fakeBackend) project(rec map[string]interface{}, fields []string) map[string]interface{} {
	out := map[string]interface{}{"id": rec["id"]}
	if f.extraKeys {
		out["display_name"] = rec["name"]
		out["__last_update"] = "2024-05-01 10:00:00"
	}
	for _, f := range fields {
		if v, ok := rec[f]; ok {
			out[f] = v
		} else {
			out[f] = false
		}
	}
	return out
}

func (f *fakeBackend) Search(ctx context.Context, modelName string, domain model.Domain, offset, limit int) ([]int64, error) {
	if err := f.hit("search", modelName); err != nil {
		return nil, err
	}
	var ids []int64
	for _, rec := range f.page(offset, limit) {
		ids = append(ids, rec["id"].(int64))
	}
	return ids, nil
}

func (f *fakeBackend) Read(ctx context.Context, modelName string, ids []int64, fields []string) ([]map[string]interface{}, error) {
	if err := f.hit("read", modelName); err != nil {
		return nil, err
	}
	var out []map[string]interface{}
	if modelName == partnerModel {
		for _, id := range ids {
			if name, ok := f.partners[id]; ok {
				out = append(out, map[string]interface{}{"id": id, "name": name})
			}
		}
		return out, nil
	}
	byID := make(map[int64]map[string]interface{}, len(f.records))
	for _, rec := range f.records {
		byID[rec["id"].(int64)] = rec
	}
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			out = append(out, f.project(rec, fields))
		}
	}
	return out, nil
}

func (f *fakeBackend) SearchRead(ctx context.Context, modelName string, domain model.Domain, fields []string, offset, limit int, order string) ([]map[string]interface{}, error) {
	if err := f.hit("search_read", modelName); err != nil {
		return nil, err
	}
	if modelName != relatedModel {
		var out []map[string]interface{}
		for _, rec := range f.page(offset, limit) {
			out = append(out, f.project(rec, fields))
		}
		return out, nil
	}

	// [[fk, "in", ids]]
	cond := domain[0].([]interface{})
	fk := cond[0].(string)
	wanted := map[int64]bool{}
	for _, id := range cond[2].([]int64) {
		wanted[id] = true
	}
	var out []map[string]interface{}
	for _, rec := range f.related {
		owner := rec[fk].([]interface{})[0].(int64)
		if wanted[owner] {
			out = append(out, rec)
		}
	}
	if order == "id asc" {
		sort.Slice(out, func(i, j int) bool { return out[i]["id"].(int64) < out[j]["id"].(int64) })
	}
	return out, nil
}
