package models

// ProgressUpdate is the payload broadcast over the admin websocket while a
// generation job advances. Polling the job endpoint remains the primary
// status contract; these events only keep the UI lively.
type ProgressUpdate struct {
	JobID    string `json:"job_id"`
	Status   string `json:"status"` // e.g. "in-progress", "awaiting-confirmation", "failed"
	Progress int    `json:"progress"`
	Step     string `json:"step,omitempty"`
	Done     bool   `json:"done"`
}

// ManifestUpdate notifies connected clients that the route manifest changed
// on disk.
type ManifestUpdate struct {
	Event   string `json:"event"` // always "manifest-updated"
	Entries int    `json:"entries"`
}
