package pairing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"shopfloor-backend/internal/model"
)

var base = time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)

func ev(id int64, equipment, typ string, offset time.Duration) model.MachineStateEvent {
	return model.MachineStateEvent{
		ID:              id,
		EquipmentNumber: equipment,
		EventType:       typ,
		EventTimestamp:  base.Add(offset),
	}
}

func TestPair(t *testing.T) {
	testCases := []struct {
		name              string
		events            []model.MachineStateEvent
		expectedIntervals int
		expectedUnpaired  []int64 // event IDs
	}{
		{
			name:              "empty input",
			events:            nil,
			expectedIntervals: 0,
			expectedUnpaired:  nil,
		},
		{
			name: "single complete pair",
			events: []model.MachineStateEvent{
				ev(1, "CNC-7", model.EventStart, 0),
				ev(2, "CNC-7", model.EventStop, 45*time.Minute),
			},
			expectedIntervals: 1,
			expectedUnpaired:  nil,
		},
		{
			name: "trailing start is unpaired, machine still running",
			events: []model.MachineStateEvent{
				ev(1, "CNC-7", model.EventStart, 0),
				ev(2, "CNC-7", model.EventStop, 10*time.Minute),
				ev(3, "CNC-7", model.EventStart, 20*time.Minute),
			},
			expectedIntervals: 1,
			expectedUnpaired:  []int64{3},
		},
		{
			name: "double start orphans the first",
			events: []model.MachineStateEvent{
				ev(1, "CNC-7", model.EventStart, 0),
				ev(2, "CNC-7", model.EventStart, 5*time.Minute),
				ev(3, "CNC-7", model.EventStop, 15*time.Minute),
			},
			expectedIntervals: 1,
			expectedUnpaired:  []int64{1},
		},
		{
			name: "stop before any start",
			events: []model.MachineStateEvent{
				ev(1, "CNC-7", model.EventStop, 0),
				ev(2, "CNC-7", model.EventStart, 5*time.Minute),
				ev(3, "CNC-7", model.EventStop, 20*time.Minute),
			},
			expectedIntervals: 1,
			expectedUnpaired:  []int64{1},
		},
		{
			name: "equipment are paired independently",
			events: []model.MachineStateEvent{
				ev(1, "CNC-7", model.EventStart, 0),
				ev(2, "VTL-2", model.EventStart, time.Minute),
				ev(3, "CNC-7", model.EventStop, 10*time.Minute),
			},
			expectedIntervals: 1,
			expectedUnpaired:  []int64{2},
		},
		{
			name: "timestamp tie breaks on insertion order",
			events: []model.MachineStateEvent{
				ev(2, "CNC-7", model.EventStop, 0),
				ev(1, "CNC-7", model.EventStart, 0),
			},
			expectedIntervals: 1,
			expectedUnpaired:  nil,
		},
		{
			name: "unordered input is sorted before the walk",
			events: []model.MachineStateEvent{
				ev(4, "CNC-7", model.EventStop, 30*time.Minute),
				ev(1, "CNC-7", model.EventStart, 0),
				ev(3, "CNC-7", model.EventStart, 20*time.Minute),
				ev(2, "CNC-7", model.EventStop, 10*time.Minute),
			},
			expectedIntervals: 2,
			expectedUnpaired:  nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := Pair(tc.events)
			assert.Len(t, res.Intervals, tc.expectedIntervals)

			var ids []int64
			for _, u := range res.Unpaired {
				ids = append(ids, u.ID)
			}
			assert.Equal(t, tc.expectedUnpaired, ids)
		})
	}
}

// TestPair_DoubleStartScenario pins down the documented walkthrough:
// [START@t0, START@t1, STOP@t2] leaves t0 unpaired and forms (t1, t2).
func TestPair_DoubleStartScenario(t *testing.T) {
	events := []model.MachineStateEvent{
		ev(1, "E1", model.EventStart, 0),
		ev(2, "E1", model.EventStart, 10*time.Minute),
		ev(3, "E1", model.EventStop, 25*time.Minute),
	}

	res := Pair(events)

	assert.Len(t, res.Unpaired, 1)
	assert.Equal(t, int64(1), res.Unpaired[0].ID)

	assert.Len(t, res.Intervals, 1)
	iv := res.Intervals[0]
	assert.Equal(t, int64(2), iv.Start.ID)
	assert.Equal(t, int64(3), iv.Stop.ID)
	assert.Equal(t, 15*time.Minute, iv.Duration)
	assert.Equal(t, float64(900), iv.DurationSeconds)
}

func TestPair_DurationNeverNegative(t *testing.T) {
	// Clock skew can put a STOP a hair before its START once IDs break the tie.
	events := []model.MachineStateEvent{
		ev(1, "E1", model.EventStart, 0),
		ev(2, "E1", model.EventStop, 0),
	}

	res := Pair(events)
	assert.Len(t, res.Intervals, 1)
	assert.Equal(t, time.Duration(0), res.Intervals[0].Duration)
}

// TestPair_IntervalCountInvariant checks count(intervals) ==
// min(count(START), count(STOP)) - orphaned-by-double-START occurrences
// on a few generated shapes.
func TestPair_IntervalCountInvariant(t *testing.T) {
	shapes := [][]string{
		{"START", "STOP", "START", "STOP"},
		{"START", "START", "START", "STOP"},
		{"STOP", "STOP", "START", "STOP"},
		{"START", "STOP", "STOP", "START"},
	}

	for _, shape := range shapes {
		var events []model.MachineStateEvent
		for i, typ := range shape {
			events = append(events, ev(int64(i+1), "E1", typ, time.Duration(i)*time.Minute))
		}

		res := Pair(events)
		assert.Equal(t, len(shape), 2*len(res.Intervals)+len(res.Unpaired),
			"every event is either in exactly one interval or unpaired: %v", shape)
	}
}
