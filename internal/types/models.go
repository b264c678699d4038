package types

import (
	"fmt"
	"strings"
	"time"
)

// Column names of the service-record table, as written by the ingestion side.
const (
	ColProtocolID     = "protocol_id"
	ColProvider       = "provider"
	ColCity           = "city"
	ColState          = "state"
	ColSegment        = "segment"
	ColInsurer        = "insurer"
	ColOpenTimestamp  = "open_timestamp"
	ColArrivalMinutes = "arrival_minutes"
	ColItemValueTotal = "item_value_total"
	ColRefundValue    = "refund_value"
	ColIsRefund       = "is_refund"
	ColIsIntermediate = "is_intermediated"
	ColNPSRaw         = "nps_raw"
)

// RequiredColumns lists the columns every RecordSet must carry, in schema order.
var RequiredColumns = []string{
	ColProtocolID,
	ColProvider,
	ColCity,
	ColState,
	ColSegment,
	ColInsurer,
	ColOpenTimestamp,
	ColArrivalMinutes,
	ColItemValueTotal,
	ColRefundValue,
	ColIsRefund,
	ColIsIntermediate,
}

// ServiceRecord is one service event. Optional numeric fields are nil when the
// source cell was empty or unparsable.
type ServiceRecord struct {
	ProtocolID     string    `json:"protocol_id"`
	Provider       string    `json:"provider"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	Segment        string    `json:"segment"`
	Insurer        string    `json:"insurer"`
	OpenedAt       time.Time `json:"open_timestamp"`
	ArrivalMinutes *float64  `json:"arrival_minutes,omitempty"`
	ItemValueTotal *float64  `json:"item_value_total,omitempty"`
	RefundValue    *float64  `json:"refund_value,omitempty"`
	IsRefund       bool      `json:"is_refund"`
	IsIntermediate bool      `json:"is_intermediated"`
	NPSRaw         *float64  `json:"nps_raw,omitempty"`
}

// Month returns the YYYY-MM bucket of the open timestamp.
func (r ServiceRecord) Month() string {
	return r.OpenedAt.Format("2006-01")
}

// RecordSet is an immutable snapshot of service records plus the set of
// columns that were present when it was ingested.
type RecordSet struct {
	Records []ServiceRecord `json:"records"`
	Columns []string        `json:"columns"`
}

// NewRecordSet builds a RecordSet carrying the full schema, including nps_raw.
func NewRecordSet(records []ServiceRecord) RecordSet {
	cols := make([]string, 0, len(RequiredColumns)+1)
	cols = append(cols, RequiredColumns...)
	cols = append(cols, ColNPSRaw)
	return RecordSet{Records: records, Columns: cols}
}

// Len returns the number of records.
func (rs RecordSet) Len() int { return len(rs.Records) }

// HasColumn reports whether the column was present at ingestion.
func (rs RecordSet) HasColumn(name string) bool {
	for _, c := range rs.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// WithRecords returns a RecordSet sharing this set's columns.
func (rs RecordSet) WithRecords(records []ServiceRecord) RecordSet {
	return RecordSet{Records: records, Columns: rs.Columns}
}

// Validate fails with a *MissingColumnError listing every required column
// absent from the set.
func (rs RecordSet) Validate(required ...string) error {
	if len(required) == 0 {
		required = RequiredColumns
	}
	var missing []string
	for _, c := range required {
		if !rs.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnError{Missing: missing}
	}
	return nil
}

// MissingColumnError is returned when required fields are absent from the input.
type MissingColumnError struct {
	Missing []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// NPSCounts are pre-aggregated survey answers for one group in one month.
type NPSCounts struct {
	Group      string `json:"group"`
	Month      string `json:"month"`
	Promoters  int    `json:"promoters"`
	Neutrals   int    `json:"neutrals"`
	Detractors int    `json:"detractors"`
}

// Total returns the number of respondents.
func (c NPSCounts) Total() int {
	return c.Promoters + c.Neutrals + c.Detractors
}

// Add sums two count rows; group and month are kept from the receiver.
func (c NPSCounts) Add(o NPSCounts) NPSCounts {
	c.Promoters += o.Promoters
	c.Neutrals += o.Neutrals
	c.Detractors += o.Detractors
	return c
}

// Float returns a pointer to v; handy for building records.
func Float(v float64) *float64 { return &v }
