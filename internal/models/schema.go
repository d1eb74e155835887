package models

// TableInfo describes an external table as reported by the metadata API.
type TableInfo struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	PrimaryFieldID string      `json:"primary_field_id,omitempty"`
	Fields         []FieldInfo `json:"fields,omitempty"`
}

// FieldInfo describes a single column of an external table.
type FieldInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"` // e.g. "singleLineText", "number", "multipleRecordLinks"
}
