package types

import (
	"gorm.io/gorm/clause"
)

type CommonFilterOperator string

const (
	CommonFilterOperatorEq  CommonFilterOperator = "eq"
	CommonFilterOperatorLte CommonFilterOperator = "lte"
	CommonFilterOperatorGte CommonFilterOperator = "gte"
	CommonFilterOperatorIn  CommonFilterOperator = "in"
)

// CommonFilter is a single column predicate.
type CommonFilter struct {
	Field    string               `json:"field"`
	Operator CommonFilterOperator `json:"operator"`
	Values   []any                `json:"values"`
}

func Eq(field string, value any) *CommonFilter {
	return &CommonFilter{Field: field, Operator: CommonFilterOperatorEq, Values: []any{value}}
}

func Gte(field string, value any) *CommonFilter {
	return &CommonFilter{Field: field, Operator: CommonFilterOperatorGte, Values: []any{value}}
}

func Lte(field string, value any) *CommonFilter {
	return &CommonFilter{Field: field, Operator: CommonFilterOperatorLte, Values: []any{value}}
}

func In(field string, values ...any) *CommonFilter {
	return &CommonFilter{Field: field, Operator: CommonFilterOperatorIn, Values: values}
}

// Build constructs a GORM expression.
func (f *CommonFilter) Build(builder clause.Builder) {
	if len(f.Values) == 0 {
		return
	}

	value := f.Values[0]

	switch f.Operator {
	case CommonFilterOperatorEq:
		clause.Eq{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorLte:
		clause.Lte{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorGte:
		clause.Gte{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorIn:
		clause.IN{Column: f.Field, Values: f.Values}.Build(builder)
	default:
		return
	}
}

// Filters joins a list of filters with AND.
type Filters []*CommonFilter

// Filters without values are skipped.
func (fs Filters) Build(builder clause.Builder) {
	exprs := make([]clause.Expression, 0, len(fs))
	for _, f := range fs {
		if f != nil && len(f.Values) > 0 {
			exprs = append(exprs, f)
		}
	}
	if len(exprs) == 0 {
		builder.WriteString("1=1")
		return
	}
	clause.And(exprs...).Build(builder)
}

// Where wraps the filters for use with gorm's Where.
func (fs Filters) Where() clause.Where {
	return clause.Where{Exprs: []clause.Expression{fs}}
}
