package model

type Record struct {
	TableName         string               `json:"tableName"`
	RecordLabel       string               `json:"recordLabel,omitempty"`
	Values            map[string]any       `json:"values"`
	DisplayValues     map[string]string    `json:"displayValues,omitempty"`
	AssociatedRecords map[string][]*Record `json:"associatedRecords,omitempty"`
}

func (r *Record) Value(field string) (any, bool) {
	v, ok := r.Values[field]
	return v, ok
}

// DisplayValue falls back to the raw value when the backend sent no formatted one.
func (r *Record) DisplayValue(field string) string {
	if dv, ok := r.DisplayValues[field]; ok {
		return dv
	}
	if v, ok := r.Values[field]; ok && v != nil {
		return toString(v)
	}
	return ""
}
