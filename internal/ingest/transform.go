package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"shopfloor-backend/internal/model"
)

var (
	timeRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*([AaPp][Mm])?$`)
	dateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2}|\d{4})$`)
)

// ParseFloat coerces a spreadsheet numeric cell to a nullable float. The
// historical exports write both "" and "0" for "not recorded", so a zero value
// normalizes to nil, never to 0. Genuinely-zero measurements are lost; that
// convention is preserved for compatibility with existing data.
func ParseFloat(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v == 0 {
		return nil
	}
	return &v
}

// ParseInt applies the same null-vs-zero convention as ParseFloat.
func ParseInt(raw string) *int {
	f := ParseFloat(raw)
	if f == nil {
		return nil
	}
	v := int(*f)
	return &v
}

// NormalizeTime canonicalizes "H:MM" or "H:MM AM/PM" to "HH:MM:00".
// With an AM/PM suffix the hour must be 1-12, without one 0-23; minutes 0-59.
// Anything else returns nil.
func NormalizeTime(raw string) *string {
	m := timeRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return nil
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if minute > 59 {
		return nil
	}

	switch strings.ToUpper(m[3]) {
	case "AM":
		if hour < 1 || hour > 12 {
			return nil
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 1 || hour > 12 {
			return nil
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour > 23 {
			return nil
		}
	}

	out := fmt.Sprintf("%02d:%02d:00", hour, minute)
	return &out
}

// NormalizeDate canonicalizes "MM/DD/YY" or "MM/DD/YYYY" to "YYYY-MM-DD".
// Two-digit years above 50 land in the 1900s, the rest in the 2000s (the
// export's own pivot, not Go's). Unparseable input returns nil.
func NormalizeDate(raw string) *string {
	m := dateRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return nil
	}

	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		if year > 50 {
			year += 1900
		} else {
			year += 2000
		}
	}

	// Round-trip through time.Date to reject 02/30 and friends.
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != time.Month(month) || d.Day() != day {
		return nil
	}

	out := d.Format("2006-01-02")
	return &out
}

// parseBool treats "Y" and the usual truthy spellings as true, everything
// else (including "") as false.
func parseBool(raw string) bool {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "Y", "YES", "TRUE", "T", "1":
		return true
	}
	return false
}

func field(row map[string]string, key string) string {
	return strings.TrimSpace(row[key])
}

// TransformRow converts one raw CSV/JSON row into a typed pour report. Only a
// missing heat number fails the row; every other field degrades to NULL under
// the coercion rules above.
func TransformRow(row map[string]string) (model.PourReport, error) {
	heat := field(row, "heat_number")
	if heat == "" {
		return model.PourReport{}, fmt.Errorf("missing heat_number")
	}

	dash := field(row, "dash_number")
	full := field(row, "full_heat_number")
	if full == "" {
		full = heat
		if dash != "" {
			full = heat + "-" + dash
		}
	}

	return model.PourReport{
		FullHeatNumber:  full,
		HeatNumber:      heat,
		DashNumber:      dash,
		PourDate:        NormalizeDate(field(row, "date")),
		Alloy:           field(row, "alloy"),
		MoldSize:        field(row, "mold_size"),
		CastWeight:      ParseFloat(field(row, "cast_weight")),
		CostPerPound:    ParseFloat(field(row, "cost_per_pound")),
		PourTemperature: ParseFloat(field(row, "pour_temperature")),
		DieTemperature:  ParseFloat(field(row, "die_temperature")),
		DieRPM:          ParseInt(field(row, "die_rpm")),
		SpinTimeMinutes: ParseFloat(field(row, "spin_time_minutes")),
		BHN:             ParseFloat(field(row, "bhn")),
		TIR:             ParseFloat(field(row, "tir")),
		StartTime:       NormalizeTime(field(row, "start_time")),
		TapTime:         NormalizeTime(field(row, "tap_time")),
		NewLining:       parseBool(field(row, "new_lining")),
		Operator:        field(row, "operator"),
		Notes:           field(row, "notes"),
	}, nil
}

// ParseCSV reads a headered CSV stream into raw rows keyed by normalized
// column names ("Cast Weight" -> "cast_weight").
func ParseCSV(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = normalizeHeader(h)
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		row := make(map[string]string, len(keys))
		for i, v := range record {
			if i < len(keys) && keys[i] != "" {
				row[keys[i]] = v
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, "-", "_")
	return h
}
