package bolsync

// Result summarizes one reconciliation run for one installation
type Result struct {
	// Imported counts orders seen for the first time
	Imported int `json:"imported"`
	// Updated counts orders that already existed and were refreshed
	Updated int `json:"updated"`
	// Total counts all marketplace orders processed this run
	Total int `json:"total"`
}
