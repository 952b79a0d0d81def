package ingest

// Result holds the outcome of an ingest operation.
type Result struct {
	SessionsReceived int   `json:"sessions_received"`
	SessionsInserted int   `json:"sessions_inserted"`
	SetsReceived     int   `json:"sets_received"`
	SetsInserted     int64 `json:"sets_inserted"`
	WarmupsSkipped   int   `json:"warmups_skipped"`

	Message string `json:"message,omitempty"`
}
