package pipeline

import (
	"reflect"
	"testing"

	"odoo-exporter/internal/model"
)

func TestClassifyValue(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want model.RelationValue
	}{
		{"string", "Case A", model.RelationValue{Kind: model.Scalar, Value: "Case A"}},
		{"false", false, model.RelationValue{Kind: model.Scalar, Value: false}},
		{"nil", nil, model.RelationValue{Kind: model.Scalar}},
		{"many2one", []interface{}{int64(7), "Alice"}, model.RelationValue{Kind: model.ManyToOne, ID: 7, Label: "Alice"}},
		{
			"labeled pairs",
			[]interface{}{[]interface{}{int64(1), "X"}, []interface{}{int64(2), "Y"}},
			model.RelationValue{Kind: model.ManyToManyLabeled, Labels: []string{"X", "Y"}},
		},
		{"bare ids", []interface{}{int64(3), int64(5), int64(9)}, model.RelationValue{Kind: model.ManyToManyIDs, IDs: []int64{3, 5, 9}}},
		{"two bare ids", []interface{}{int64(3), int64(5)}, model.RelationValue{Kind: model.ManyToManyIDs, IDs: []int64{3, 5}}},
		{"empty list", []interface{}{}, model.RelationValue{Kind: model.ManyToManyIDs, IDs: []int64{}}},
		{"mixed list", []interface{}{"a", int64(1)}, model.RelationValue{Kind: model.Scalar, Value: []interface{}{"a", int64(1)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyValue(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ClassifyValue(%#v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestClassifyRecord(t *testing.T) {
	rec := Classify(map[string]interface{}{
		"id":      int64(10),
		"fase_id": []interface{}{int64(3), "Inicial"},
	})
	if rec["id"].Kind != model.Scalar || rec["id"].Value != int64(10) {
		t.Fatalf("unexpected id %#v", rec["id"])
	}
	if rec["fase_id"].Kind != model.ManyToOne {
		t.Fatalf("expected many2one, got %s", rec["fase_id"].Kind)
	}
}
