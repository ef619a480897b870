package domain

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	apperrors "permanode/utils/errors"
)

// Range is a half open milestone index range [Start, End).
type Range struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

func (r Range) Len() uint32 { return r.End - r.Start }

func (r Range) Contains(index uint32) bool { return index >= r.Start && index < r.End }

func (r Range) String() string { return fmt.Sprintf("%d..%d", r.Start, r.End) }

// SyncRange bounds the milestones the node is responsible for, From inclusive, To exclusive.
type SyncRange struct {
	From uint32 `mapstructure:"from" yaml:"from" json:"from"`
	To   uint32 `mapstructure:"to" yaml:"to" json:"to"`
}

// DefaultSyncRange covers every milestone.
func DefaultSyncRange() SyncRange {
	return SyncRange{From: 1, To: math.MaxUint32}
}

func (s SyncRange) Validate() error {
	if s.From == 0 {
		return fmt.Errorf("%w: sync range must start at 1 or above", apperrors.ErrInvalidInput)
	}
	if s.From >= s.To {
		return fmt.Errorf("%w: sync range from %d must be below to %d", apperrors.ErrInvalidInput, s.From, s.To)
	}
	return nil
}

// ParseSyncRange reads "from..to". An empty bound keeps the default.
func ParseSyncRange(s string) (SyncRange, error) {
	r := DefaultSyncRange()
	from, to, ok := strings.Cut(s, "..")
	if !ok {
		return r, fmt.Errorf("%w: range %q must look like from..to", apperrors.ErrInvalidInput, s)
	}
	if from != "" {
		v, err := strconv.ParseUint(from, 10, 32)
		if err != nil {
			return r, fmt.Errorf("%w: range start %q", apperrors.ErrInvalidInput, from)
		}
		r.From = uint32(v)
	}
	if to != "" {
		v, err := strconv.ParseUint(to, 10, 32)
		if err != nil {
			return r, fmt.Errorf("%w: range end %q", apperrors.ErrInvalidInput, to)
		}
		r.To = uint32(v)
	}
	return r, r.Validate()
}

// Clamp caps the upper bound to just above latest.
func (s SyncRange) Clamp(latest uint32) SyncRange {
	if latest < math.MaxUint32 && latest+1 < s.To {
		s.To = latest + 1
	}
	return s
}

// SyncRecord is one row of the sync table.
type SyncRecord struct {
	MilestoneIndex uint32
	SyncedBy       *uint8
	LoggedBy       *uint8
}

func (r SyncRecord) Synced() bool { return r.SyncedBy != nil }

func (r SyncRecord) Logged() bool { return r.SyncedBy != nil && r.LoggedBy != nil }

// SyncData classifies a sync range into completed, synced but unlogged and
// missing milestones. Each list is kept highest-first so the lowest range
// is at the tail.
type SyncData struct {
	Completed         []Range
	SyncedButUnlogged []Range
	Gaps              []Range
}

// BuildSyncData classifies every index of syncRange from the stored records.
func BuildSyncData(syncRange SyncRange, records []SyncRecord) *SyncData {
	sorted := make([]SyncRecord, 0, len(records))
	for _, r := range records {
		if r.MilestoneIndex >= syncRange.From && r.MilestoneIndex < syncRange.To {
			sorted = append(sorted, r)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MilestoneIndex < sorted[j].MilestoneIndex })

	data := &SyncData{}
	cursor := syncRange.From
	for i, r := range sorted {
		if i > 0 && sorted[i-1].MilestoneIndex == r.MilestoneIndex {
			continue
		}
		if r.MilestoneIndex > cursor {
			data.Gaps = appendRange(data.Gaps, Range{Start: cursor, End: r.MilestoneIndex})
		}
		single := Range{Start: r.MilestoneIndex, End: r.MilestoneIndex + 1}
		switch {
		case r.Logged():
			data.Completed = appendRange(data.Completed, single)
		case r.Synced():
			data.SyncedButUnlogged = appendRange(data.SyncedButUnlogged, single)
		default:
			data.Gaps = appendRange(data.Gaps, single)
		}
		cursor = r.MilestoneIndex + 1
	}
	if cursor < syncRange.To {
		data.Gaps = appendRange(data.Gaps, Range{Start: cursor, End: syncRange.To})
	}

	reverse(data.Completed)
	reverse(data.SyncedButUnlogged)
	reverse(data.Gaps)
	return data
}

func appendRange(ranges []Range, r Range) []Range {
	if n := len(ranges); n > 0 && ranges[n-1].End == r.Start {
		ranges[n-1].End = r.End
		return ranges
	}
	return append(ranges, r)
}

func reverse(ranges []Range) {
	for i, j := 0, len(ranges)-1; i < j; i, j = i+1, j-1 {
		ranges[i], ranges[j] = ranges[j], ranges[i]
	}
}

func pop(ranges *[]Range) (Range, bool) {
	n := len(*ranges)
	if n == 0 {
		return Range{}, false
	}
	r := (*ranges)[n-1]
	*ranges = (*ranges)[:n-1]
	return r, true
}

func peek(ranges []Range) (Range, bool) {
	if len(ranges) == 0 {
		return Range{}, false
	}
	return ranges[len(ranges)-1], true
}

func (d *SyncData) TakeLowestGap() (Range, bool) { return pop(&d.Gaps) }

func (d *SyncData) TakeLowestUnlogged() (Range, bool) { return pop(&d.SyncedButUnlogged) }

// lowestGapOrUnlogged picks the list holding the lowest range. Ties go to
// the unlogged list.
func (d *SyncData) lowestGapOrUnlogged() *[]Range {
	gap, hasGap := peek(d.Gaps)
	unlogged, hasUnlogged := peek(d.SyncedButUnlogged)
	switch {
	case hasGap && hasUnlogged:
		if gap.Start < unlogged.Start {
			return &d.Gaps
		}
		return &d.SyncedButUnlogged
	case hasGap:
		return &d.Gaps
	case hasUnlogged:
		return &d.SyncedButUnlogged
	}
	return nil
}

func (d *SyncData) TakeLowestGapOrUnlogged() (Range, bool) {
	list := d.lowestGapOrUnlogged()
	if list == nil {
		return Range{}, false
	}
	return pop(list)
}

// TakeLowestUncomplete pops the lowest gap or unlogged range and keeps
// absorbing whichever range starts where it ends.
func (d *SyncData) TakeLowestUncomplete() (Range, bool) {
	current, ok := d.TakeLowestGapOrUnlogged()
	if !ok {
		return Range{}, false
	}
	for {
		list := d.lowestGapOrUnlogged()
		if list == nil {
			return current, true
		}
		next, _ := peek(*list)
		if next.Start != current.End {
			return current, true
		}
		current.End = next.End
		pop(list)
	}
}

// IsGap reports whether index sits in a gap.
func (d *SyncData) IsGap(index uint32) bool {
	for _, r := range d.Gaps {
		if r.Contains(index) {
			return true
		}
	}
	return false
}

// CompletedCount is the number of synced and logged milestones.
func (d *SyncData) CompletedCount() uint64 {
	var n uint64
	for _, r := range d.Completed {
		n += uint64(r.Len())
	}
	return n
}

// SyncSummary is the ascending view of SyncData served by the API.
type SyncSummary struct {
	Completed         []Range `json:"completed"`
	SyncedButUnlogged []Range `json:"synced_but_unlogged"`
	Gaps              []Range `json:"gaps"`
	CompletedCount    uint64  `json:"completed_count"`
}

func (d *SyncData) Summary() SyncSummary {
	asc := func(in []Range) []Range {
		out := make([]Range, len(in))
		copy(out, in)
		reverse(out)
		return out
	}
	return SyncSummary{
		Completed:         asc(d.Completed),
		SyncedButUnlogged: asc(d.SyncedButUnlogged),
		Gaps:              asc(d.Gaps),
		CompletedCount:    d.CompletedCount(),
	}
}
