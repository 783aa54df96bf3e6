package telemetry

import "sync"

type ReportKind int

const (
	REPORT_BROKEN ReportKind = iota
	REPORT_WARNING
	REPORT_DEBUG
	REPORT_COUNT
)

// Report is a single call made against MemoryAPI.
type Report struct {
	Kind ReportKind
	// Id holds the id for broken/warning/count reports and the message for debug reports.
	Id     string
	Params []any
	Count  int64
}

// MemoryAPI records every report in memory so tests can assert on them.
type MemoryAPI struct {
	lock    sync.Mutex
	reports []Report
}

func NewMemoryAPI() *MemoryAPI {
	return &MemoryAPI{}
}

func (m *MemoryAPI) push(r Report) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.reports = append(m.reports, r)
}

func (m *MemoryAPI) ReportBroken(id string, params ...any) {
	m.push(Report{Kind: REPORT_BROKEN, Id: id, Params: params})
}

func (m *MemoryAPI) ReportWarning(id string, params ...any) {
	m.push(Report{Kind: REPORT_WARNING, Id: id, Params: params})
}

func (m *MemoryAPI) ReportDebug(msg string, params ...any) {
	m.push(Report{Kind: REPORT_DEBUG, Id: msg, Params: params})
}

func (m *MemoryAPI) ReportCount(id string, count int64) {
	m.push(Report{Kind: REPORT_COUNT, Id: id, Count: count})
}

// Reports returns a copy of all the reports of a given kind in the order they were made.
func (m *MemoryAPI) Reports(kind ReportKind) []Report {
	m.lock.Lock()
	defer m.lock.Unlock()

	var out []Report
	for _, r := range m.reports {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// Count returns the last reported count for the given id and whether it was reported at all.
func (m *MemoryAPI) Count(id string) (int64, bool) {
	counts := m.Reports(REPORT_COUNT)
	for i := len(counts) - 1; i >= 0; i-- {
		if counts[i].Id == id {
			return counts[i].Count, true
		}
	}
	return 0, false
}
