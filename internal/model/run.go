package model

import "time"

// RunStatus represents the current stage of a join run.
type RunStatus string

const (
	RunStatusLoadingFootprints   RunStatus = "loading_footprints"
	RunStatusDissolving          RunStatus = "dissolving"
	RunStatusLoadingTransactions RunStatus = "loading_transactions"
	RunStatusJoining             RunStatus = "joining"
	RunStatusExporting           RunStatus = "exporting"
	RunStatusComplete            RunStatus = "complete"
	RunStatusFailed              RunStatus = "failed"
)

// RunResult holds the counts reported at the end of a run.
type RunResult struct {
	RunID             string    `json:"run_id"`
	FootprintsRead    int       `json:"footprints_read"`
	FootprintsSkipped int       `json:"footprints_skipped"`
	PostalPoints      int       `json:"postal_points"`
	Transactions      int       `json:"transactions"`
	MissingPostal     int       `json:"missing_postal"`
	Unmatched         int       `json:"unmatched"`
	RowsWritten       int       `json:"rows_written"`
	FeaturesWritten   int       `json:"features_written"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
}

// Dropped returns the number of transactions excluded from the outputs.
func (r RunResult) Dropped() int {
	return r.MissingPostal + r.Unmatched
}
