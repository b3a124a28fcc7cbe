package httpapi

// SweepStatus is the last known state of the expiry sweeper, kept in an
// atomic.Value and reported to the UI.
type SweepStatus struct {
	LastRunAt   string `json:"last_run_at"`
	LastOkAt    string `json:"last_ok_at"`
	LastError   string `json:"last_error"`
	LastPlanned int    `json:"last_planned"`
	LastDeleted int    `json:"last_deleted"`
	LastFailed  int    `json:"last_failed"`
}
