package domain

// MonthClose marks a (year, month) period as frozen: its figures are the
// authoritative opening values for the following month and may not be edited.
type MonthClose struct {
	Year  int
	Month int
}

// MonthCloseSet is the set of closed periods relevant to a year. It decides
// whether snapshots and movements of a given month may still be mutated.
type MonthCloseSet struct {
	closed map[MonthClose]bool
}

// NewMonthCloseSet builds a set from a list of closed periods
func NewMonthCloseSet(closes []MonthClose) *MonthCloseSet {
	s := &MonthCloseSet{closed: make(map[MonthClose]bool, len(closes))}
	for _, c := range closes {
		s.closed[c] = true
	}
	return s
}

// IsClosed reports whether (year, month) is a closed period
func (s *MonthCloseSet) IsClosed(year, month int) bool {
	return s.closed[MonthClose{Year: year, Month: month}]
}

// MovementEditable returns nil if movements dated in (year, month) may be
// created, edited or deleted. Movements are locked only by their own month.
func (s *MonthCloseSet) MovementEditable(year, month int) error {
	if s.IsClosed(year, month) {
		return ErrPeriodClosed
	}
	return nil
}

// SnapshotEditable returns nil if the snapshot for (year, month) may be
// written. A snapshot is locked by its own month AND by the preceding month:
// closing month m-1 freezes the opening value of month m, and the snapshot
// must not drift from that baseline. January checks December of the prior
// year.
func (s *MonthCloseSet) SnapshotEditable(year, month int) error {
	if s.IsClosed(year, month) {
		return ErrPeriodClosed
	}

	prevYear, prevMonth := year, month-1
	if prevMonth == 0 {
		prevYear, prevMonth = year-1, 12
	}
	if s.IsClosed(prevYear, prevMonth) {
		return ErrPriorPeriodClosed
	}

	return nil
}
