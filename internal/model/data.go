package model

// GenericRecord is a schema-agnostic map: field name to value. After
// normalization every relational value has been replaced by a string.
type GenericRecord map[string]interface{}

// RelationKind tags the shape of a fetched value
type RelationKind int

const (
	// Scalar is a plain value: string, number, bool, nil or an unrecognized shape.
	Scalar RelationKind = iota
	// ManyToOne is an [id, label] pair.
	ManyToOne
	// ManyToManyLabeled is a list of [id, label] pairs.
	ManyToManyLabeled
	// ManyToManyIDs is a list of bare ids whose labels must be looked up.
	ManyToManyIDs
)

func (k RelationKind) String() string {
	switch k {
	case ManyToOne:
		return "many2one"
	case ManyToManyLabeled:
		return "many2many_labeled"
	case ManyToManyIDs:
		return "many2many_ids"
	default:
		return "scalar"
	}
}

// RelationValue is a fetched field value classified by shape. Only the fields
// belonging to Kind are meaningful.
type RelationValue struct {
	Kind   RelationKind
	Value  interface{} // Scalar
	ID     int64       // ManyToOne
	Label  string      // ManyToOne
	Labels []string    // ManyToManyLabeled
	IDs    []int64     // ManyToManyIDs
}

// RawRecord is a fetched record with every value classified.
type RawRecord map[string]RelationValue

