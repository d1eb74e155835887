package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/verdantops/ecodesk/internal/jobs"
	"github.com/verdantops/ecodesk/internal/models"
)

const parkedJobBody = `{
	"id": "job-ok",
	"status": "awaiting-confirmation",
	"progress": 100,
	"result": {
		"target_name": "UnitConversion",
		"table_name": "Unit Conversion",
		"route_path": "unit-conversion",
		"files_created": {"service": true, "client": true, "routes": true, "uiconfig": true},
		"manifest_updated": true
	}
}`

// setupConsole mocks the console endpoints the client touches and records
// the session cookie of the last request.
func setupConsole(t *testing.T) (*httptest.Server, *string) {
	t.Helper()
	var lastSession string
	mux := http.NewServeMux()

	remember := func(r *http.Request) {
		lastSession = ""
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			lastSession = cookie.Value
		}
	}

	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Password != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"Invalid credentials"}`)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "sess-abc"})
		fmt.Fprint(w, `{"id":1,"username":"admin","role":"admin"}`)
	})

	mux.HandleFunc("/api/admin/generator/jobs", func(w http.ResponseWriter, r *http.Request) {
		remember(r)
		var spec models.TargetSpec
		if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"Invalid request payload"}`)
			return
		}
		w.WriteHeader(http.StatusAccepted)
		fmt.Fprintf(w, `{"id":"job-new","status":"pending","progress":0,"spec":{"base_id":%q,"table_id":%q}}`,
			spec.BaseID, spec.TableID)
	})

	mux.HandleFunc("/api/admin/generator/jobs/job-ok", func(w http.ResponseWriter, r *http.Request) {
		remember(r)
		fmt.Fprint(w, parkedJobBody)
	})

	mux.HandleFunc("/api/admin/generator/jobs/job-missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"Job not found"}`)
	})

	mux.HandleFunc("/api/admin/generator/jobs/job-ok/finalize", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			AddNavEntry bool `json:"add_nav_entry"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fmt.Fprintf(w, `{"id":"job-ok","status":"completed","progress":100,"current_step":"nav=%t"}`, body.AddNavEntry)
	})

	mux.HandleFunc("/api/admin/generator/jobs/job-ok/cancel", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"job-ok","status":"cancelled","progress":100}`)
	})

	mux.HandleFunc("/api/admin/generator/jobs/job-done/cancel", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"error":"Job is not awaiting confirmation"}`)
	})

	mux.HandleFunc("/api/admin/generator/artifacts/UnitConversion", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"all_created":false,"files_created":{"service":true,"client":true,"routes":false,"uiconfig":false}}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &lastSession
}

func TestClientLogin(t *testing.T) {
	server, lastSession := setupConsole(t)
	c := NewClient(server.URL, "")

	if err := c.Login(context.Background(), "admin", "hunter2"); err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	if c.session != "sess-abc" {
		t.Errorf("Expected session token to be stored, got %q", c.session)
	}

	// The stored token must ride along on later calls.
	if _, err := c.FetchJob(context.Background(), "job-ok"); err != nil {
		t.Fatalf("FetchJob() failed: %v", err)
	}
	if *lastSession != "sess-abc" {
		t.Errorf("Expected session cookie on request, got %q", *lastSession)
	}
}

func TestClientLoginRejected(t *testing.T) {
	server, _ := setupConsole(t)
	c := NewClient(server.URL, "")

	err := c.Login(context.Background(), "admin", "wrong")
	if err == nil {
		t.Fatal("Expected login to fail")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 APIError, got %v", err)
	}
	if apiErr.Message != "Invalid credentials" {
		t.Errorf("Expected error envelope message, got %q", apiErr.Message)
	}
}

func TestClientFetchJob(t *testing.T) {
	server, _ := setupConsole(t)
	c := NewClient(server.URL, "sess-abc")

	job, err := c.FetchJob(context.Background(), "job-ok")
	if err != nil {
		t.Fatalf("FetchJob() failed: %v", err)
	}
	if job.Status != models.StatusAwaitingConfirmation {
		t.Errorf("Expected awaiting-confirmation, got %s", job.Status)
	}
	if job.Result == nil || job.Result.RoutePath != "unit-conversion" {
		t.Errorf("Unexpected result: %+v", job.Result)
	}
}

func TestClientFetchJobNotFound(t *testing.T) {
	server, _ := setupConsole(t)
	c := NewClient(server.URL, "sess-abc")

	_, err := c.FetchJob(context.Background(), "job-missing")
	if !errors.Is(err, jobs.ErrJobNotFound) {
		t.Errorf("Expected ErrJobNotFound for 404, got %v", err)
	}
}

func TestClientCreateJob(t *testing.T) {
	server, lastSession := setupConsole(t)
	c := NewClient(server.URL, "sess-abc")

	job, err := c.CreateJob(context.Background(), models.TargetSpec{BaseID: "appBase1", TableID: "tblUnits"})
	if err != nil {
		t.Fatalf("CreateJob() failed: %v", err)
	}
	if job.ID != "job-new" || job.Status != models.StatusPending {
		t.Errorf("Unexpected accepted job: %+v", job)
	}
	if job.Spec.BaseID != "appBase1" {
		t.Errorf("Expected spec echoed back, got %+v", job.Spec)
	}
	if *lastSession != "sess-abc" {
		t.Errorf("Expected session cookie on request, got %q", *lastSession)
	}
}

func TestClientVerifyArtifacts(t *testing.T) {
	server, _ := setupConsole(t)
	c := NewClient(server.URL, "sess-abc")

	files, allCreated, err := c.VerifyArtifacts(context.Background(), "UnitConversion")
	if err != nil {
		t.Fatalf("VerifyArtifacts() failed: %v", err)
	}
	if allCreated {
		t.Error("Expected partial artifact set")
	}
	if !files[models.ArtifactService] || files[models.ArtifactRoutes] {
		t.Errorf("Unexpected files map: %+v", files)
	}
}

func TestClientFinalizeAndCancel(t *testing.T) {
	server, _ := setupConsole(t)
	c := NewClient(server.URL, "sess-abc")
	ctx := context.Background()

	job, err := c.FinalizeJob(ctx, "job-ok", true)
	if err != nil {
		t.Fatalf("FinalizeJob() failed: %v", err)
	}
	if job.Status != models.StatusCompleted {
		t.Errorf("Expected completed, got %s", job.Status)
	}
	if job.CurrentStep != "nav=true" {
		t.Errorf("Expected add_nav_entry to reach the server, got %q", job.CurrentStep)
	}

	job, err = c.CancelJob(ctx, "job-ok")
	if err != nil {
		t.Fatalf("CancelJob() failed: %v", err)
	}
	if job.Status != models.StatusCancelled {
		t.Errorf("Expected cancelled, got %s", job.Status)
	}
}

func TestClientConflictSurfacesMessage(t *testing.T) {
	server, _ := setupConsole(t)
	c := NewClient(server.URL, "sess-abc")

	_, err := c.CancelJob(context.Background(), "job-done")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusConflict {
		t.Fatalf("Expected 409 APIError, got %v", err)
	}
	if apiErr.Message != "Job is not awaiting confirmation" {
		t.Errorf("Expected conflict message, got %q", apiErr.Message)
	}
}
