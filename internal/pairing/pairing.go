package pairing

import (
	"sort"
	"time"

	"shopfloor-backend/internal/model"
)

// Interval is one completed START→STOP run for a piece of equipment. It is
// derived on read and never stored.
type Interval struct {
	EquipmentNumber string                  `json:"equipment_number"`
	Start           model.MachineStateEvent `json:"start_event"`
	Stop            model.MachineStateEvent `json:"stop_event"`
	Duration        time.Duration           `json:"-"`
	DurationSeconds float64                 `json:"duration_seconds"`
}

// Result holds the outcome of pairing a slice of events.
type Result struct {
	Intervals []Interval
	Unpaired  []model.MachineStateEvent
}

// Pair walks the given events and matches each START with the next STOP on the
// same equipment. The input may mix equipment and arrive in any order; events
// are grouped per equipment and ordered by timestamp, with the auto-increment
// ID breaking ties (insertion order, never arbitrary).
//
// Unpaired conditions, all reported rather than dropped:
//   - a START followed by another START (the earlier one is orphaned)
//   - a STOP with no preceding open START
//   - a trailing START with no STOP yet (the machine is still running)
func Pair(events []model.MachineStateEvent) Result {
	byEquipment := make(map[string][]model.MachineStateEvent)
	for _, ev := range events {
		byEquipment[ev.EquipmentNumber] = append(byEquipment[ev.EquipmentNumber], ev)
	}

	var res Result
	for _, seq := range byEquipment {
		sortEvents(seq)
		pairOne(seq, &res)
	}

	sort.Slice(res.Intervals, func(i, j int) bool {
		return eventLess(res.Intervals[i].Start, res.Intervals[j].Start)
	})
	sort.Slice(res.Unpaired, func(i, j int) bool {
		return eventLess(res.Unpaired[i], res.Unpaired[j])
	})
	return res
}

// pairOne runs the pending-START walk over one equipment's ordered events.
func pairOne(seq []model.MachineStateEvent, res *Result) {
	var pending *model.MachineStateEvent
	for i := range seq {
		ev := seq[i]
		switch ev.EventType {
		case model.EventStart:
			if pending != nil {
				// Second START with no STOP in between orphans the first.
				res.Unpaired = append(res.Unpaired, *pending)
			}
			pending = &seq[i]
		case model.EventStop:
			if pending == nil {
				// STOP before any open START. Valid unpaired condition, the
				// caller surfaces it as an operator warning.
				res.Unpaired = append(res.Unpaired, ev)
				continue
			}
			d := ev.EventTimestamp.Sub(pending.EventTimestamp)
			if d < 0 {
				d = 0
			}
			res.Intervals = append(res.Intervals, Interval{
				EquipmentNumber: ev.EquipmentNumber,
				Start:           *pending,
				Stop:            ev,
				Duration:        d,
				DurationSeconds: d.Seconds(),
			})
			pending = nil
		}
	}
	if pending != nil {
		// Still running: expected state, not an error.
		res.Unpaired = append(res.Unpaired, *pending)
	}
}

// Unpaired returns only the dangling events for the given slice.
func Unpaired(events []model.MachineStateEvent) []model.MachineStateEvent {
	return Pair(events).Unpaired
}

func sortEvents(seq []model.MachineStateEvent) {
	sort.SliceStable(seq, func(i, j int) bool { return eventLess(seq[i], seq[j]) })
}

func eventLess(a, b model.MachineStateEvent) bool {
	if !a.EventTimestamp.Equal(b.EventTimestamp) {
		return a.EventTimestamp.Before(b.EventTimestamp)
	}
	return a.ID < b.ID
}
