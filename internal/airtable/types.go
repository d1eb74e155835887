package airtable

import "time"

// Record is a single row of an external table. Fields is the raw column
// name → value map as the upstream returns it.
type Record struct {
	ID          string                 `json:"id"`
	CreatedTime time.Time              `json:"createdTime,omitempty"`
	Fields      map[string]interface{} `json:"fields"`
}

// RecordPage is one page of a record listing. A non-empty Offset means more
// pages follow.
type RecordPage struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

// ListRecordsOptions narrows a record listing.
type ListRecordsOptions struct {
	View       string
	MaxRecords int
	Offset     string
}

// Wire shapes of the metadata API.

type tablesResponse struct {
	Tables []tablePayload `json:"tables"`
}

type tablePayload struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	PrimaryFieldID string         `json:"primaryFieldId"`
	Fields         []fieldPayload `json:"fields"`
}

type fieldPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type deleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
