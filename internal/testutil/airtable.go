package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// FakeAirtableToken is the bearer token the fake upstream accepts.
const FakeAirtableToken = "test-token"

// FakeAirtableBase is the only base the fake upstream knows about.
const FakeAirtableBase = "appBase1"

const fakeTablesBody = `{
  "tables": [
    {
      "id": "tblUnits",
      "name": "Unit Conversion",
      "primaryFieldId": "fldName",
      "fields": [
        {"id": "fldName", "name": "Name", "type": "singleLineText"},
        {"id": "fldFactor", "name": "Factor", "type": "number"},
        {"id": "fldUnit", "name": "Target Unit", "type": "singleLineText"}
      ]
    },
    {
      "id": "tblScope",
      "name": "Scope categorisation",
      "primaryFieldId": "fldScope",
      "fields": [
        {"id": "fldScope", "name": "Scope", "type": "singleLineText"},
        {"id": "fldDesc", "name": "Description", "type": "multilineText"}
      ]
    }
  ]
}`

// FakeAirtable starts an httptest server that mimics the slice of the
// Airtable API the console touches: base schema introspection and record
// CRUD for FakeAirtableBase. Unknown bases return 404 and a bad bearer
// token returns 401, both with the upstream's error envelope.
func FakeAirtable(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/v0/meta/bases/", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			writeAirtableError(w, http.StatusUnauthorized, "AUTHENTICATION_REQUIRED", "Invalid authentication token")
			return
		}
		// Path shape: /v0/meta/bases/{baseID}/tables
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 5 || parts[4] != "tables" {
			http.NotFound(w, r)
			return
		}
		if parts[3] != FakeAirtableBase {
			writeAirtableError(w, http.StatusNotFound, "NOT_FOUND", "Base not found")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(fakeTablesBody))
	})

	mux.HandleFunc("/v0/"+FakeAirtableBase+"/", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			writeAirtableError(w, http.StatusUnauthorized, "AUTHENTICATION_REQUIRED", "Invalid authentication token")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]interface{}{
				"records": []map[string]interface{}{
					{
						"id":          "rec1",
						"createdTime": "2026-01-05T10:00:00.000Z",
						"fields":      map[string]interface{}{"Name": "kg to t", "Factor": 0.001},
					},
				},
			})
		case http.MethodPost:
			var body struct {
				Fields map[string]interface{} `json:"fields"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":          "recNew",
				"createdTime": "2026-01-05T10:00:00.000Z",
				"fields":      body.Fields,
			})
		case http.MethodPatch:
			var body struct {
				Fields map[string]interface{} `json:"fields"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":     recordIDFromPath(r.URL.Path),
				"fields": body.Fields,
			})
		case http.MethodDelete:
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":      recordIDFromPath(r.URL.Path),
				"deleted": true,
			})
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func authorized(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Bearer "+FakeAirtableToken
}

func recordIDFromPath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	return parts[len(parts)-1]
}

func writeAirtableError(w http.ResponseWriter, status int, errType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{"type": errType, "message": message},
	})
}
