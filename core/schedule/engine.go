package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/martinmn/defsched/core/logger"
	"github.com/martinmn/defsched/core/metrics"
	"github.com/martinmn/defsched/core/model"
	"github.com/martinmn/defsched/internal/eventbus"
)

// Failure reasons recorded on Not Scheduled results.
const (
	ReasonNoCommonSlot     = "no common free slot of required length"
	ReasonParallelLimit    = "parallel session limit reached at every common slot"
	ReasonTooFewExaminers  = "not enough examiners outside the supervisor set"
	ReasonFieldMatchFailed = "no slot for field-matched examiners"
)

// ErrReservationRace reports a reservation that failed after a successful
// feasibility scan. In a sequential run this cannot happen; seeing it means
// the grid was mutated outside the engine while a run was in progress.
var ErrReservationRace = errors.New("grid changed between feasibility check and reservation")

// Engine schedules defense requests over a slot horizon. It owns the
// availability grid and workload tracker for the duration of a run and
// processes requests strictly sequentially, capstone groups collapsed into
// one unit each.
type Engine struct {
	cfg       Config
	horizon   *Horizon
	grid      *Grid
	loads     *WorkloadTracker
	durations *DurationResolver
	examiners []*model.Examiner
	byCode    map[string]*model.Examiner
	runID     string
	log       logger.Logger
	bus       eventbus.EventBus
	sink      metrics.ScheduleSink
	pending   []metrics.ScheduleEvent
}

// NewEngine creates an engine for one scheduling run. bus and sink may be
// nil; log must not be.
func NewEngine(cfg Config, horizon *Horizon, examiners []*model.Examiner, log logger.Logger, bus eventbus.EventBus, sink metrics.ScheduleSink) (*Engine, error) {
	if horizon == nil || log == nil {
		return nil, fmt.Errorf("schedule: nil parameter provided to NewEngine")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("schedule config: %w", err)
	}
	byCode := make(map[string]*model.Examiner, len(examiners))
	for i, e := range examiners {
		e.Order = i
		byCode[e.Code] = e
	}
	return &Engine{
		cfg:       cfg,
		horizon:   horizon,
		grid:      NewGrid(cfg.ParallelLimit),
		loads:     NewWorkloadTracker(examiners),
		durations: NewDurationResolver(cfg),
		examiners: examiners,
		byCode:    byCode,
		runID:     uuid.NewString(),
		log:       log,
		bus:       bus,
		sink:      sink,
	}, nil
}

// RunID identifies this engine's scheduling run.
func (e *Engine) RunID() string { return e.runID }

// Grid exposes the occupancy state, read-only by convention; callers must
// not reserve while a run is in progress.
func (e *Engine) Grid() *Grid { return e.grid }

// Workloads exposes the assignment counts accrued so far.
func (e *Engine) Workloads() *WorkloadTracker { return e.loads }

// entity is one scheduling unit: an individual request or a whole capstone
// group collapsed into a virtual request.
type entity struct {
	key     string // session tag: group id, or requester id for individuals
	members []model.Request
	outcome outcome
	decided bool
}

type outcome struct {
	status model.Status
	reason string
	run    []string
	panel  model.Panel
	seats  []string
	tier   int
}

// ScheduleAll processes the requests in input order and returns one result
// per request, aligned with the input. Capstone groups are scheduled once
// and share their outcome. Requests left unscheduled by the first pass get
// one more full pass before results are final. Only configuration errors and
// invariant violations abort the run.
func (e *Engine) ScheduleAll(requests []model.Request) ([]model.Result, error) {
	entities, byRequest := e.collectEntities(requests)
	e.log.Infof("scheduling %d requests as %d units over %d slots", len(requests), len(entities), e.horizon.Len())

	for pass := 1; pass <= 2; pass++ {
		retried := 0
		for _, ent := range entities {
			if ent.decided && ent.outcome.status != model.StatusNotScheduled {
				continue
			}
			if pass == 2 {
				retried++
			}
			out, err := e.scheduleEntity(ent)
			if err != nil {
				return nil, err
			}
			ent.outcome = out
			ent.decided = true
		}
		if pass == 2 && retried > 0 {
			e.log.Infof("second pass retried %d unscheduled units", retried)
		}
	}

	// Failure effects are deferred until the outcome is final so a retried
	// unit is not counted twice.
	for _, ent := range entities {
		if ent.outcome.status != model.StatusNotScheduled {
			continue
		}
		primary := ent.members[0]
		e.log.Warnf("unit %s not scheduled: %s", ent.key, ent.outcome.reason)
		panelsScheduled.WithLabelValues(model.StatusNotScheduled.String()).Inc()
		if e.bus != nil {
			e.bus.Publish(FailedEvent{RunID: e.runID, RequestID: primary.ID, GroupID: primary.GroupID, Reason: ent.outcome.reason})
		}
		e.record(primary, model.StatusNotScheduled, "", 0, 0, ent.outcome.reason)
	}

	results := make([]model.Result, len(requests))
	for i, req := range requests {
		results[i] = renderResult(req, byRequest[i].outcome)
	}
	e.flushSink()
	return results, nil
}

// collectEntities groups requests by capstone id, preserving the input order
// of first appearance, and maps each request index to its entity.
func (e *Engine) collectEntities(requests []model.Request) ([]*entity, []*entity) {
	var entities []*entity
	groups := make(map[string]*entity)
	byRequest := make([]*entity, len(requests))
	for i, req := range requests {
		if req.IsGroup() {
			gid := strings.TrimSpace(req.GroupID)
			ent, ok := groups[gid]
			if !ok {
				ent = &entity{key: gid}
				groups[gid] = ent
				entities = append(entities, ent)
			}
			ent.members = append(ent.members, req)
			byRequest[i] = ent
			continue
		}
		ent := &entity{key: req.ID, members: []model.Request{req}}
		entities = append(entities, ent)
		byRequest[i] = ent
	}
	for _, ent := range entities {
		if len(ent.members) > 1 {
			e.checkGroupFields(ent)
		}
	}
	return entities, byRequest
}

// checkGroupFields warns when capstone members disagree on field tags; the
// first member's fields drive the group's matching.
func (e *Engine) checkGroupFields(ent *entity) {
	primary := ent.members[0]
	for _, m := range ent.members[1:] {
		if !strings.EqualFold(m.Field1, primary.Field1) || !strings.EqualFold(m.Field2, primary.Field2) {
			e.log.Warnf("group %s: member %s fields (%s, %s) differ from primary (%s, %s)",
				ent.key, m.ID, m.Field1, m.Field2, primary.Field1, primary.Field2)
		}
	}
}

func (e *Engine) scheduleEntity(ent *entity) (outcome, error) {
	primary := ent.members[0]
	retry := ent.decided
	groupSize := 0
	if primary.IsGroup() {
		groupSize = len(ent.members)
	}
	duration, err := e.durations.Resolve(groupSize)
	if err != nil {
		return outcome{}, fmt.Errorf("duration for %s: %w", ent.key, err)
	}

	supervisors := e.resolveSupervisors(ent, retry)
	exclude := make(map[string]bool, len(supervisors))
	supCodes := make([]string, 0, len(supervisors))
	for _, s := range supervisors {
		exclude[s.Code] = true
		supCodes = append(supCodes, s.Code)
	}

	// Tier 1: field and time match.
	pool := BuildPool(primary, e.examiners, exclude, e.loads)
	var limitSeen bool
	selected := e.selectFieldExaminers(pool)
	if len(selected) >= e.cfg.RequiredExaminers {
		ids := append(append([]string(nil), supCodes...), codes(selected)...)
		scan := e.findRun(ids, duration)
		limitSeen = limitSeen || scan.limitBlocked
		if scan.ok {
			return e.commit(ent, supervisors, selected, scan, 1, model.StatusFieldAndTime)
		}
		if !retry {
			e.publishFallback(primary.ID, ReasonFieldMatchFailed)
		}
	} else if !retry {
		e.publishFallback(primary.ID, fmt.Sprintf("only %d of %d field-matched examiners", len(selected), e.cfg.RequiredExaminers))
	}

	// Tier 2: time match only over workload-ordered combinations.
	out, tier2Limit, err := e.tryTimeOnly(ent, supervisors, exclude, duration, retry)
	if err != nil || out.status != model.StatusNotScheduled {
		return out, err
	}
	limitSeen = limitSeen || tier2Limit

	reason := out.reason
	if reason == "" {
		reason = ReasonNoCommonSlot
		if limitSeen {
			reason = ReasonParallelLimit
		}
	}
	return outcome{status: model.StatusNotScheduled, reason: reason, seats: noneSeats(e.cfg.RequiredExaminers)}, nil
}

// selectFieldExaminers fills examiner seats from the field-ranked lists:
// the least-loaded field-1 match, then a distinct least-loaded field-2
// match, then the combined list until the required count is reached.
func (e *Engine) selectFieldExaminers(pool Pool) []*model.Examiner {
	required := e.cfg.RequiredExaminers
	var sel []*model.Examiner
	chosen := make(map[string]bool)
	if required > 0 && len(pool.Field1) > 0 {
		sel = append(sel, pool.Field1[0])
		chosen[pool.Field1[0].Code] = true
	}
	if len(sel) < required {
		for _, c := range pool.Field2 {
			if !chosen[c.Code] {
				sel = append(sel, c)
				chosen[c.Code] = true
				break
			}
		}
	}
	for _, c := range pool.Any {
		if len(sel) >= required {
			break
		}
		if !chosen[c.Code] {
			sel = append(sel, c)
			chosen[c.Code] = true
		}
	}
	return sel
}

// tryTimeOnly enumerates examiner combinations in ascending workload-sum
// order. Combinations are bucketed by sum; inside the first bucket holding
// any feasible combination the earliest feasible start slot wins, remaining
// ties broken by enumeration order. Later buckets cannot improve fairness,
// so the search stops there.
func (e *Engine) tryTimeOnly(ent *entity, supervisors []*model.Examiner, exclude map[string]bool, duration int, retry bool) (outcome, bool, error) {
	required := e.cfg.RequiredExaminers
	var candidates []*model.Examiner
	for _, ex := range e.examiners {
		if !exclude[ex.Code] {
			candidates = append(candidates, ex)
		}
	}
	rankByWorkload(candidates, e.loads)
	if e.cfg.Tier2MaxCandidates > 0 && len(candidates) > e.cfg.Tier2MaxCandidates {
		candidates = candidates[:e.cfg.Tier2MaxCandidates]
	}
	if len(candidates) < required {
		return outcome{status: model.StatusNotScheduled, reason: ReasonTooFewExaminers, seats: noneSeats(required)}, false, nil
	}

	supCodes := make([]string, 0, len(supervisors))
	for _, s := range supervisors {
		supCodes = append(supCodes, s.Code)
	}

	combos := combinations(len(candidates), required)
	sums := make([]int, len(combos))
	for i, combo := range combos {
		for _, idx := range combo {
			sums[i] += e.loads.Count(candidates[idx].Code)
		}
	}
	order := make([]int, len(combos))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return sums[order[a]] < sums[order[b]] })

	var (
		limitSeen bool
		evaluated int
		bestScan  runScan
		bestCombo []int
		bestSum   = -1
	)
	for _, ci := range order {
		if bestSum >= 0 && sums[ci] > bestSum {
			break // a feasible combination exists in a cheaper bucket
		}
		combo := combos[ci]
		ids := append([]string(nil), supCodes...)
		for _, idx := range combo {
			ids = append(ids, candidates[idx].Code)
		}
		evaluated++
		scan := e.findRun(ids, duration)
		limitSeen = limitSeen || scan.limitBlocked
		if !scan.ok {
			continue
		}
		if bestSum < 0 || scan.start < bestScan.start {
			bestScan = scan
			bestCombo = combo
			bestSum = sums[ci]
		}
	}
	if !retry {
		tier2Combos.Observe(float64(evaluated))
	}

	if bestSum < 0 {
		return outcome{status: model.StatusNotScheduled, seats: noneSeats(required)}, limitSeen, nil
	}
	examiners := make([]*model.Examiner, 0, required)
	for _, idx := range bestCombo {
		examiners = append(examiners, candidates[idx])
	}
	out, err := e.commit(ent, supervisors, examiners, bestScan, 2, model.StatusTimeOnly)
	return out, limitSeen, err
}

// runScan is the result of a first-fit scan over the horizon.
type runScan struct {
	ok           bool
	start        int
	run          []string
	scanned      int
	limitBlocked bool
}

// findRun scans the horizon chronologically for the first contiguous run
// where every identity is declared available, none already occupies a slot
// of the run, and every slot is below the parallel-session limit.
func (e *Engine) findRun(ids []string, duration int) runScan {
	var scan runScan
	for i := 0; i < e.horizon.Len(); i++ {
		run, ok := e.horizon.Run(i, duration)
		if !ok {
			continue
		}
		scan.scanned++
		if !e.allAvailable(ids, run) {
			continue
		}
		switch e.grid.Check(run, ids) {
		case CheckLimit:
			scan.limitBlocked = true
		case CheckOK:
			scan.ok = true
			scan.start = i
			scan.run = run
			return scan
		}
	}
	return scan
}

func (e *Engine) allAvailable(ids []string, run []string) bool {
	for _, id := range ids {
		ex, ok := e.byCode[id]
		if !ok {
			return false
		}
		for _, slot := range run {
			if !ex.AvailableAt(slot) {
				return false
			}
		}
	}
	return true
}

// commit reserves the run, updates workloads and publishes the decision.
// The grid re-validates feasibility inside TryReserve; a failure there means
// something mutated the grid mid-run and the run is aborted.
func (e *Engine) commit(ent *entity, supervisors, examiners []*model.Examiner, scan runScan, tier int, status model.Status) (outcome, error) {
	ids := append(codes(supervisors), codes(examiners)...)
	if !e.grid.TryReserve(scan.run, ids, ent.key) {
		return outcome{}, fmt.Errorf("unit %s at %s: %w", ent.key, scan.run[0], ErrReservationRace)
	}
	for _, ex := range examiners {
		e.loads.Increment(ex.Code)
	}

	panel := model.Panel{}
	for _, s := range supervisors {
		panel.Members = append(panel.Members, model.PanelMember{Code: s.Code, Role: model.RoleSupervisor})
	}
	for _, ex := range examiners {
		panel.Members = append(panel.Members, model.PanelMember{Code: ex.Code, Role: model.RoleExaminer})
	}
	seats := noneSeats(e.cfg.RequiredExaminers)
	for i, ex := range examiners {
		if i >= len(seats) {
			break
		}
		seats[i] = ex.Code
	}

	primary := ent.members[0]
	e.log.Infof("unit %s scheduled at %s (%s, tier %d, panel %s)",
		ent.key, scan.run[0], status, tier, strings.Join(ids, " "))
	panelsScheduled.WithLabelValues(status.String()).Inc()
	slotScanDepth.Observe(float64(scan.scanned))
	if e.bus != nil {
		e.bus.Publish(ScheduledEvent{
			RunID:     e.runID,
			RequestID: primary.ID,
			GroupID:   primary.GroupID,
			Slot:      scan.run[0],
			Status:    status,
			Panel:     panel,
			Tier:      tier,
		})
	}
	e.record(primary, status, scan.run[0], len(scan.run), tier, "")

	return outcome{
		status: status,
		run:    append([]string(nil), scan.run...),
		panel:  panel,
		seats:  seats,
		tier:   tier,
	}, nil
}

// resolveSupervisors matches the union of all members' supervisor references
// against the examiner set. A reference matches by code or by name
// substring, case-insensitive. Unresolved references produce a warning and
// are dropped; on a retry the warning and event are not repeated.
func (e *Engine) resolveSupervisors(ent *entity, retry bool) []*model.Examiner {
	var resolved []*model.Examiner
	seen := make(map[string]bool)
	for _, m := range ent.members {
		for _, ref := range m.Supervisors() {
			ex := e.matchSupervisor(ref)
			if ex == nil {
				if !retry {
					e.log.Warnf("request %s: supervisor %q not found", m.ID, ref)
					if e.bus != nil {
						e.bus.Publish(UnresolvedSupervisorEvent{RunID: e.runID, RequestID: m.ID, Reference: ref})
					}
				}
				continue
			}
			if !seen[ex.Code] {
				seen[ex.Code] = true
				resolved = append(resolved, ex)
			}
		}
	}
	return resolved
}

func (e *Engine) matchSupervisor(ref string) *model.Examiner {
	for _, ex := range e.examiners {
		if strings.EqualFold(ref, ex.Code) {
			return ex
		}
	}
	low := strings.ToLower(ref)
	for _, ex := range e.examiners {
		if strings.EqualFold(ref, ex.Name) || strings.Contains(strings.ToLower(ex.Name), low) {
			return ex
		}
	}
	return nil
}

func (e *Engine) publishFallback(requestID, reason string) {
	tierFallbacks.Inc()
	e.log.Debugf("request %s: falling back to time-only matching: %s", requestID, reason)
	if e.bus != nil {
		e.bus.Publish(FallbackEvent{RunID: e.runID, RequestID: requestID, Reason: reason})
	}
}

func (e *Engine) record(primary model.Request, status model.Status, slot string, duration, tier int, reason string) {
	if e.sink == nil {
		return
	}
	e.pending = append(e.pending, metrics.ScheduleEvent{
		RunID:     e.runID,
		RequestID: primary.ID,
		GroupID:   primary.GroupID,
		Status:    status,
		Slot:      slot,
		Duration:  duration,
		Tier:      tier,
		Reason:    reason,
	})
}

func (e *Engine) flushSink() {
	if e.sink == nil {
		return
	}
	if err := e.sink.RecordScheduleEvents(e.pending); err != nil {
		e.log.Errorf("metrics error: %v", err)
	}
	e.pending = nil
	if wr, ok := e.sink.(metrics.WorkloadRecorder); ok {
		samples := make([]metrics.WorkloadSample, 0, len(e.examiners))
		for _, ex := range e.examiners {
			samples = append(samples, metrics.WorkloadSample{RunID: e.runID, Code: ex.Code, Assignments: e.loads.Count(ex.Code)})
		}
		if err := wr.RecordWorkload(samples); err != nil {
			e.log.Errorf("workload metrics error: %v", err)
		}
	}
}

func renderResult(req model.Request, out outcome) model.Result {
	res := model.Result{
		RequestID: req.ID,
		Name:      req.Name,
		GroupID:   req.GroupID,
		Status:    out.status,
		Reason:    out.reason,
		Panel:     out.panel,
	}
	if len(out.run) > 0 {
		res.Slot = out.run[0]
		res.Slots = append([]string(nil), out.run...)
	}
	res.Examiner1 = model.NoneExaminer
	res.Examiner2 = model.NoneExaminer
	if len(out.seats) > 0 {
		res.Examiner1 = out.seats[0]
	}
	if len(out.seats) > 1 {
		res.Examiner2 = out.seats[1]
	}
	return res
}

func codes(list []*model.Examiner) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.Code
	}
	return out
}

func noneSeats(n int) []string {
	if n < 2 {
		n = 2
	}
	seats := make([]string, n)
	for i := range seats {
		seats[i] = model.NoneExaminer
	}
	return seats
}

// combinations enumerates all k-subsets of [0,n) in lexicographic order.
func combinations(n, k int) [][]int {
	if k <= 0 || k > n {
		return nil
	}
	var out [][]int
	combo := make([]int, k)
	for i := range combo {
		combo[i] = i
	}
	for {
		out = append(out, append([]int(nil), combo...))
		i := k - 1
		for i >= 0 && combo[i] == n-k+i {
			i--
		}
		if i < 0 {
			return out
		}
		combo[i]++
		for j := i + 1; j < k; j++ {
			combo[j] = combo[j-1] + 1
		}
	}
}
