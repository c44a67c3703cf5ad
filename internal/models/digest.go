package models

import "time"

// DigestReport is one scheduled batch of strategy reports.
type DigestReport struct {
	Date    time.Time
	Entries []DigestEntry
}

// DigestEntry is the outcome of one configured request. Exactly one of Report
// and Error is set.
type DigestEntry struct {
	Prompt      string
	ContentType ContentType
	Region      string
	Report      *StrategyReport
	Error       string
}

// Succeeded counts the entries that produced a report.
func (d DigestReport) Succeeded() int {
	n := 0
	for _, e := range d.Entries {
		if e.Report != nil {
			n++
		}
	}
	return n
}
