// Package types contains common types used across the application
package types

import "time"

// Summary is the aggregate outcome of a catalog run. While a run is in
// progress it is a point-in-time snapshot.
type Summary struct {
	RunID      string        `json:"run_id"`
	Running    bool          `json:"running"`
	Cancelled  bool          `json:"cancelled"`
	Total      int           `json:"total"`
	Processed  int           `json:"processed"`
	Matched    int           `json:"matched"`
	Unmatched  int           `json:"unmatched"`
	Failed     int           `json:"failed"`
	Persisted  int           `json:"persisted"`
	Queries    int           `json:"queries"`
	Candidates int           `json:"candidates"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Remaining returns how many records have not been processed yet.
func (s Summary) Remaining() int {
	if r := s.Total - s.Processed; r > 0 {
		return r
	}
	return 0
}

// MatchRate returns matched records over processed records, or 0.
func (s Summary) MatchRate() float64 {
	if s.Processed == 0 {
		return 0
	}
	return float64(s.Matched) / float64(s.Processed)
}
