package telemetry

import (
	"fmt"
)

// API is where components send their errors, warnings and counters. Components take
// it as a dependency so tests can swap in a MemoryAPI and assert on what was reported.
//
// Ids name the operation that reported, scoped by the package that owns it, the
// reports of a run look like:
//
//	bonappetit: client.scrape   the menu page could not be fetched or parsed
//	fdc: client.search          a food search failed after its retries
//	fdc: client.resolve         a search hit could not be turned into a profile
//	chrono: scheduler.run-task  a scheduled pipeline run returned an error
//	pipeline: pipeline.missing  (count) items without nutrient data in the last run
//
// Ids are lowercase, words of one operation are joined with dashes. Every package
// keeps its ids in `report_...` constants.
type API interface {
	// ReportBroken reports an operation that failed and needs someone to look at it.
	// Details go in params, not in the id.
	ReportBroken(id string, params ...any)
	// ReportWarning reports something unexpected the operation recovered from.
	ReportWarning(id string, params ...any)
	// ReportDebug is only shown with debug logging on.
	ReportDebug(msg string, params ...any)
	// ReportCount reports the value of a counter for the last run, values from
	// different runs are separate points and are not added up.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id it reports with a namespace, ex. "fdc: client.search".
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) scope(id string) string {
	return fmt.Sprintf("%s: %s", s.namespace, id)
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.scope(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.scope(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.scope(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.scope(id), count)
}
