package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Reserved keys of the nested rolling-period namespaces in a company file.
const (
	AveragesNamespace = "averages"
	CAGRNamespace     = "cagr"
)

// Record maps a metric name to its value for one period.
// NaN marks a value that is present in the source but carries no data.
type Record map[string]float64

// Table maps a period key (fiscal year or rolling-period label) to a Record.
// Upright tables use the same two levels keyed metric then year.
type Table map[string]Record

// FinancialTables holds every table of one company, plus the optional
// nested averages/cagr namespaces (table identifier -> rolling-period block).
type FinancialTables struct {
	Tables   map[string]Table
	Averages map[string]Table
	CAGR     map[string]Table
}

// Precomputed is the per-ticker side table of averages and CAGRs,
// keyed by table category, then metric, then horizon label ("1Y").
type Precomputed struct {
	Averages map[string]Table `json:"averages"`
	CAGR     map[string]Table `json:"cagr"`
}

// HasData reports whether the record holds at least one usable value.
func (r Record) HasData() bool {
	for _, v := range r {
		if !math.IsNaN(v) {
			return true
		}
	}
	return false
}

// Value returns the metric value, treating NaN as absent.
func (r Record) Value(metric string) (float64, bool) {
	v, ok := r[metric]
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for k, rec := range t {
		out[k] = rec.Clone()
	}
	return out
}

func cloneTables(in map[string]Table) map[string]Table {
	if in == nil {
		return nil
	}
	out := make(map[string]Table, len(in))
	for k, t := range in {
		out[k] = t.Clone()
	}
	return out
}

// Clone returns a deep copy that shares no maps with the receiver.
func (ft FinancialTables) Clone() FinancialTables {
	return FinancialTables{
		Tables:   cloneTables(ft.Tables),
		Averages: cloneTables(ft.Averages),
		CAGR:     cloneTables(ft.CAGR),
	}
}

func (p Precomputed) Clone() Precomputed {
	return Precomputed{Averages: cloneTables(p.Averages), CAGR: cloneTables(p.CAGR)}
}

// Table returns the table with the given identifier.
func (ft FinancialTables) Table(id string) (Table, bool) {
	t, ok := ft.Tables[id]
	return t, ok
}

// IsEmpty reports whether no table or namespace is present.
func (ft FinancialTables) IsEmpty() bool {
	return len(ft.Tables) == 0 && len(ft.Averages) == 0 && len(ft.CAGR) == 0
}

// Merge returns a deep copy of ft with overlay applied per (table, period,
// field). Fields missing from the overlay, or given as NaN, keep the static
// value. Neither ft nor overlay is modified.
func (ft FinancialTables) Merge(overlay FinancialTables) FinancialTables {
	out := ft.Clone()
	out.Tables = mergeTables(out.Tables, overlay.Tables)
	out.Averages = mergeTables(out.Averages, overlay.Averages)
	out.CAGR = mergeTables(out.CAGR, overlay.CAGR)
	return out
}

// periodKeyed reports whether a table is keyed by period (inverted) or by
// metric (upright). known is false when no key or field looks like a period.
func periodKeyed(t Table) (inverted, known bool) {
	for key := range t {
		if IsRollingKey(key) {
			return true, true
		}
		if _, ok := ParseYear(key); ok {
			return true, true
		}
	}
	for _, rec := range t {
		for field := range rec {
			if _, ok := ParseYear(field); ok || IsRollingKey(field) {
				return false, true
			}
		}
	}
	return false, false
}

func transpose(t Table) Table {
	out := make(Table)
	for outer, rec := range t {
		for inner, v := range rec {
			r, ok := out[inner]
			if !ok {
				r = make(Record)
				out[inner] = r
			}
			r[outer] = v
		}
	}
	return out
}

// mergeTables applies src onto dst. An overlay table laid out differently
// from the stored one is transposed first so both resolve the same way.
func mergeTables(dst, src map[string]Table) map[string]Table {
	for id, table := range src {
		if stored, ok := dst[id]; ok {
			storedInv, storedKnown := periodKeyed(stored)
			overlayInv, overlayKnown := periodKeyed(table)
			if storedKnown && overlayKnown && storedInv != overlayInv {
				table = transpose(table)
			}
		}
		for period, rec := range table {
			if !rec.HasData() {
				continue
			}
			if dst == nil {
				dst = make(map[string]Table)
			}
			target, ok := dst[id]
			if !ok {
				target = make(Table)
				dst[id] = target
			}
			key := NormalizePeriodKey(period)
			existing, ok := target[key]
			if !ok {
				existing = make(Record)
				target[key] = existing
			}
			for field, v := range rec {
				if math.IsNaN(v) {
					continue
				}
				existing[NormalizePeriodKey(field)] = v
			}
		}
	}
	return dst
}

// UnmarshalJSON decodes numbers and nulls; any other value is skipped so a
// malformed entry cannot reject the whole record.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Record, len(raw))
	for name, msg := range raw {
		msg = bytes.TrimSpace(msg)
		if bytes.Equal(msg, []byte("null")) {
			out[NormalizePeriodKey(name)] = math.NaN()
			continue
		}
		var v float64
		if err := json.Unmarshal(msg, &v); err != nil {
			continue
		}
		out[NormalizePeriodKey(name)] = v
	}
	*r = out
	return nil
}

// MarshalJSON writes NaN and infinities as null.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]*float64, len(r))
	for k, v := range r {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[k] = nil
			continue
		}
		v := v
		out[k] = &v
	}
	return json.Marshal(out)
}

// UnmarshalJSON skips entries that are not objects.
func (t *Table) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Table, len(raw))
	for key, msg := range raw {
		var rec Record
		if err := json.Unmarshal(msg, &rec); err != nil {
			continue
		}
		out[NormalizePeriodKey(key)] = rec
	}
	*t = out
	return nil
}

func decodeNamespace(msg json.RawMessage) map[string]Table {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(msg, &raw); err != nil {
		return nil
	}
	out := make(map[string]Table, len(raw))
	for id, body := range raw {
		var t Table
		if err := json.Unmarshal(body, &t); err != nil {
			continue
		}
		out[id] = t
	}
	return out
}

// UnmarshalJSON reads the flat company layout: table identifiers at the top
// level with the reserved "averages" and "cagr" keys holding namespaces.
// Only a non-object document is an error.
func (ft *FinancialTables) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("financial tables must be a JSON object: %w", err)
	}
	out := FinancialTables{Tables: make(map[string]Table, len(raw))}
	for id, msg := range raw {
		switch id {
		case AveragesNamespace:
			out.Averages = decodeNamespace(msg)
		case CAGRNamespace:
			out.CAGR = decodeNamespace(msg)
		default:
			var t Table
			if err := json.Unmarshal(msg, &t); err != nil {
				continue
			}
			out.Tables[id] = t
		}
	}
	*ft = out
	return nil
}

func (ft FinancialTables) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(ft.Tables)+2)
	for id, t := range ft.Tables {
		out[id] = t
	}
	if ft.Averages != nil {
		out[AveragesNamespace] = ft.Averages
	}
	if ft.CAGR != nil {
		out[CAGRNamespace] = ft.CAGR
	}
	return json.Marshal(out)
}

// TableIDs returns the table identifiers in sorted order.
func (ft FinancialTables) TableIDs() []string {
	ids := make([]string, 0, len(ft.Tables))
	for id := range ft.Tables {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
