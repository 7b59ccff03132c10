// Package audit records the outcome of every authorization decision so
// grants and denials stay reconstructible after the fact.
package audit

import "time"

// Entry is one evaluated decision.
type Entry struct {
	ID          int64
	PrincipalID int64
	ResourceID  int64
	Action      string
	Allowed     bool
	Reason      string
	At          time.Time
}

// TimelineFilters narrow a timeline query. Zero values mean "no filter".
type TimelineFilters struct {
	PrincipalID int64
	ResourceID  int64
	DeniedOnly  bool
	From        time.Time
	To          time.Time
	Page        int
	PageSize    int
}

// PagingInfo describes the window a timeline result covers.
type PagingInfo struct {
	Page     int
	PageSize int
	HasNext  bool
}

// Result bundles timeline rows with paging information.
type Result struct {
	Rows   []Entry
	Paging PagingInfo
}
