package model

import "fmt"

type CriteriaOperator string

const EQUALS CriteriaOperator = "EQUALS"
const NOT_EQUALS CriteriaOperator = "NOT_EQUALS"
const IN CriteriaOperator = "IN"
const NOT_IN CriteriaOperator = "NOT_IN"
const STARTS_WITH CriteriaOperator = "STARTS_WITH"
const ENDS_WITH CriteriaOperator = "ENDS_WITH"
const CONTAINS CriteriaOperator = "CONTAINS"
const LESS_THAN CriteriaOperator = "LESS_THAN"
const LESS_THAN_OR_EQUALS CriteriaOperator = "LESS_THAN_OR_EQUALS"
const GREATER_THAN CriteriaOperator = "GREATER_THAN"
const GREATER_THAN_OR_EQUALS CriteriaOperator = "GREATER_THAN_OR_EQUALS"
const IS_BLANK CriteriaOperator = "IS_BLANK"
const IS_NOT_BLANK CriteriaOperator = "IS_NOT_BLANK"
const BETWEEN CriteriaOperator = "BETWEEN"
const NOT_BETWEEN CriteriaOperator = "NOT_BETWEEN"

// QueryFilter is sent to the backend as-is.
type QueryFilter struct {
	Criteria        []*FilterCriteria `json:"criteria,omitempty"`
	OrderBys        []*FilterOrderBy  `json:"orderBys,omitempty"`
	SubFilters      []*QueryFilter    `json:"subFilters,omitempty"`
	BooleanOperator string            `json:"booleanOperator,omitempty"`
	Skip            *int              `json:"skip,omitempty"`
	Limit           *int              `json:"limit,omitempty"`
}

type FilterCriteria struct {
	FieldName string           `json:"fieldName"`
	Operator  CriteriaOperator `json:"operator"`
	Values    []any            `json:"values,omitempty"`
}

type FilterOrderBy struct {
	FieldName   string `json:"fieldName"`
	IsAscending bool   `json:"isAscending"`
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
