package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/verdantops/ecodesk/internal/models"
	"github.com/verdantops/ecodesk/internal/testutil"
)

func TestNavHandlers(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()
	adminCookie := testutil.GetAuthCookie(t, server, "navadmin", "password", "admin")
	userCookie := testutil.GetAuthCookie(t, server, "navuser", "password", "user")

	var createdID int64
	t.Run("Admin can create a nav entry", func(t *testing.T) {
		payload := `{"label":"Unit Conversion","route_path":"unit-conversion","section":"reference"}`
		req, _ := http.NewRequest("POST", "/api/admin/nav", bytes.NewBufferString(payload))
		req.AddCookie(adminCookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d: %s", status, rr.Body.String())
		}
		var item models.NavItem
		json.Unmarshal(rr.Body.Bytes(), &item)
		if item.Label != "Unit Conversion" || item.ID == 0 {
			t.Errorf("Unexpected nav item: %+v", item)
		}
		createdID = item.ID
	})

	t.Run("Creating the same route again does not duplicate", func(t *testing.T) {
		payload := `{"label":"Unit Conversion","route_path":"unit-conversion","section":"reference"}`
		req, _ := http.NewRequest("POST", "/api/admin/nav", bytes.NewBufferString(payload))
		req.AddCookie(adminCookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusOK {
			t.Errorf("Expected status 200 for existing route, got %d", status)
		}
	})

	t.Run("Any authenticated user can list nav", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/nav", nil)
		req.AddCookie(userCookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", status)
		}
		var items []models.NavItem
		json.Unmarshal(rr.Body.Bytes(), &items)
		if len(items) != 1 {
			t.Errorf("Expected 1 nav item, got %d", len(items))
		}
	})

	t.Run("Non-admin cannot create nav entries", func(t *testing.T) {
		payload := `{"label":"Sneaky","route_path":"sneaky"}`
		req, _ := http.NewRequest("POST", "/api/admin/nav", bytes.NewBufferString(payload))
		req.AddCookie(userCookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusForbidden {
			t.Errorf("Expected status 403, got %d", status)
		}
	})

	t.Run("Admin can delete a nav entry", func(t *testing.T) {
		req, _ := http.NewRequest("DELETE", fmt.Sprintf("/api/admin/nav/%d", createdID), nil)
		req.AddCookie(adminCookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusNoContent {
			t.Errorf("Expected status 204, got %d", status)
		}
	})
}

func TestFlagHandlers(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()
	adminCookie := testutil.GetAuthCookie(t, server, "flagadmin", "password", "admin")
	userCookie := testutil.GetAuthCookie(t, server, "flaguser", "password", "user")

	t.Run("Admin can upsert a flag", func(t *testing.T) {
		payload := `{"enabled":true,"description":"Show CO2 intensity charts"}`
		req, _ := http.NewRequest("PUT", "/api/admin/flags/intensity-charts", bytes.NewBufferString(payload))
		req.AddCookie(adminCookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", status, rr.Body.String())
		}
		var flag models.FeatureFlag
		json.Unmarshal(rr.Body.Bytes(), &flag)
		if flag.Name != "intensity-charts" || !flag.Enabled {
			t.Errorf("Unexpected flag: %+v", flag)
		}
	})

	t.Run("Upsert updates an existing flag", func(t *testing.T) {
		payload := `{"enabled":false,"description":"Show CO2 intensity charts"}`
		req, _ := http.NewRequest("PUT", "/api/admin/flags/intensity-charts", bytes.NewBufferString(payload))
		req.AddCookie(adminCookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		var flag models.FeatureFlag
		json.Unmarshal(rr.Body.Bytes(), &flag)
		if flag.Enabled {
			t.Error("Expected flag to be disabled after update")
		}
	})

	t.Run("Any authenticated user can list flags", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/flags", nil)
		req.AddCookie(userCookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", status)
		}
		var flags []models.FeatureFlag
		json.Unmarshal(rr.Body.Bytes(), &flags)
		if len(flags) != 1 {
			t.Errorf("Expected 1 flag, got %d", len(flags))
		}
	})

	t.Run("Non-admin cannot upsert flags", func(t *testing.T) {
		payload := `{"enabled":true}`
		req, _ := http.NewRequest("PUT", "/api/admin/flags/sneaky", bytes.NewBufferString(payload))
		req.AddCookie(userCookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusForbidden {
			t.Errorf("Expected status 403, got %d", status)
		}
	})
}

func TestPreferenceHandlers(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()
	cookie := testutil.GetAuthCookie(t, server, "prefuser", "password", "user")
	otherCookie := testutil.CookieForUser(t, server, "otheruser", "password", "user")

	t.Run("Unset preference returns 404", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/preferences/theme", nil)
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", status)
		}
	})

	t.Run("Set and get a preference", func(t *testing.T) {
		payload := `{"value":{"mode":"dark"}}`
		req, _ := http.NewRequest("PUT", "/api/preferences/theme", bytes.NewBufferString(payload))
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", status, rr.Body.String())
		}

		req, _ = http.NewRequest("GET", "/api/preferences/theme", nil)
		req.AddCookie(cookie)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", status)
		}
		var pref models.Preference
		json.Unmarshal(rr.Body.Bytes(), &pref)
		if pref.Key != "theme" || pref.Value != `{"mode":"dark"}` {
			t.Errorf("Unexpected preference: %+v", pref)
		}
	})

	t.Run("Preferences are per user", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/preferences/theme", nil)
		req.AddCookie(otherCookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusNotFound {
			t.Errorf("Expected other user to have no theme preference, got %d", status)
		}
	})

	t.Run("List preferences", func(t *testing.T) {
		payload := `{"value":"en"}`
		req, _ := http.NewRequest("PUT", "/api/preferences/locale", bytes.NewBufferString(payload))
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		req, _ = http.NewRequest("GET", "/api/preferences", nil)
		req.AddCookie(cookie)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		var prefs []models.Preference
		json.Unmarshal(rr.Body.Bytes(), &prefs)
		if len(prefs) != 2 {
			t.Errorf("Expected 2 preferences, got %d", len(prefs))
		}
	})

	t.Run("Empty value is rejected", func(t *testing.T) {
		req, _ := http.NewRequest("PUT", "/api/preferences/theme", bytes.NewBufferString(`{}`))
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", status)
		}
	})
}
