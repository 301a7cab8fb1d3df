package schedule

import (
	"sort"

	"github.com/martinmn/defsched/core/model"
)

// Pool holds the ranked examiner candidates for one request: one list per
// required field and a combined list of everyone matching either field.
// Supervisors of the request are excluded from all lists. Ranking is
// ascending by current workload; among equal workloads input order is kept,
// so the pool must be rebuilt per request as workloads move.
type Pool struct {
	Field1 []*model.Examiner
	Field2 []*model.Examiner
	Any    []*model.Examiner
}

// BuildPool computes the candidate pool for a request. exclude contains the
// codes of the request's resolved supervisors.
func BuildPool(req model.Request, examiners []*model.Examiner, exclude map[string]bool, loads *WorkloadTracker) Pool {
	var p Pool
	for _, e := range examiners {
		if exclude[e.Code] {
			continue
		}
		m1 := e.HasExpertise(req.Field1)
		m2 := e.HasExpertise(req.Field2)
		if m1 {
			p.Field1 = append(p.Field1, e)
		}
		if m2 {
			p.Field2 = append(p.Field2, e)
		}
		if m1 || m2 {
			p.Any = append(p.Any, e)
		}
	}
	rankByWorkload(p.Field1, loads)
	rankByWorkload(p.Field2, loads)
	rankByWorkload(p.Any, loads)
	return p
}

// rankByWorkload sorts candidates ascending by workload. The input slice is
// in examiner input order, so a stable sort preserves that as the tie-break.
func rankByWorkload(list []*model.Examiner, loads *WorkloadTracker) {
	sort.SliceStable(list, func(i, j int) bool {
		return loads.Count(list[i].Code) < loads.Count(list[j].Code)
	})
}
