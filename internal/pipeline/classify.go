package pipeline

import (
	"fmt"
	"math"

	"odoo-exporter/internal/model"
)

// Classify tags every value of a fetched record by shape. It runs once, at the
// fetch boundary, so later stages only switch on RelationValue.Kind.
func Classify(raw map[string]interface{}) model.RawRecord {
	rec := make(model.RawRecord, len(raw))
	for field, v := range raw {
		rec[field] = ClassifyValue(v)
	}
	return rec
}

// ClassifyValue recognizes the three relational shapes the backend returns:
//
//	[7, "Alice"]                 many2one
//	[[1, "A"], [2, "B"]]         many2many with labels
//	[3, 5, 9]                    many2many with bare ids
//
// A two-element list is only a many2one when its second element is a string,
// so [3, 5] is read as two bare ids. Anything else stays a scalar.
func ClassifyValue(v interface{}) model.RelationValue {
	items, ok := v.([]interface{})
	if !ok {
		return model.RelationValue{Kind: model.Scalar, Value: v}
	}

	if len(items) == 2 {
		if id, ok := asID(items[0]); ok {
			if label, ok := items[1].(string); ok {
				return model.RelationValue{Kind: model.ManyToOne, ID: id, Label: label}
			}
		}
	}

	if ids, ok := idList(items); ok {
		return model.RelationValue{Kind: model.ManyToManyIDs, IDs: ids}
	}
	if labels, ok := labelList(items); ok {
		return model.RelationValue{Kind: model.ManyToManyLabeled, Labels: labels}
	}
	return model.RelationValue{Kind: model.Scalar, Value: v}
}

func idList(items []interface{}) ([]int64, bool) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		id, ok := asID(item)
		if !ok {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

func labelList(items []interface{}) ([]string, bool) {
	labels := make([]string, 0, len(items))
	for _, item := range items {
		pair, ok := item.([]interface{})
		if !ok || len(pair) != 2 {
			return nil, false
		}
		if _, ok := asID(pair[0]); !ok {
			return nil, false
		}
		switch label := pair[1].(type) {
		case string:
			labels = append(labels, label)
		default:
			labels = append(labels, fmt.Sprint(label))
		}
	}
	return labels, true
}

// asID accepts the integer types a decoder may produce. Booleans are never ids.
func asID(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int64(n), true
		}
	}
	return 0, false
}
