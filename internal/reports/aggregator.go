package reports

import "github.com/DipuTony/trulyhelp-portal/internal/donation"

// Breakdown is one grouping bucket of a report.
type Breakdown struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// Report is derived and non-persistent: always recomputed from a fresh
// fetch, never cached across a filter change.
type Report struct {
	Filter        FilterSpec                              `json:"-"`
	TotalCount    int                                     `json:"totalCount"`
	TotalAmount   float64                                 `json:"totalAmount"`
	AverageAmount float64                                 `json:"averageAmount"`
	Donations     []donation.Donation                     `json:"donations"`
	ByMethod      map[donation.PaymentMethod]Breakdown    `json:"byMethod"`
	ByStatus      map[donation.PaymentStatus]Breakdown    `json:"byStatus"`
}

// Aggregate computes the summary in a single pass over the list. A report
// over zero donations is a valid, renderable empty report with a zero
// average, not an error.
func Aggregate(donations []donation.Donation) Report {
	rep := Report{
		Donations: donations,
		ByMethod:  make(map[donation.PaymentMethod]Breakdown),
		ByStatus:  make(map[donation.PaymentStatus]Breakdown),
	}

	for _, d := range donations {
		rep.TotalCount++
		rep.TotalAmount += d.Amount

		m := rep.ByMethod[d.Method]
		m.Count++
		m.Amount += d.Amount
		rep.ByMethod[d.Method] = m

		st := rep.ByStatus[d.PaymentStatus]
		st.Count++
		st.Amount += d.Amount
		rep.ByStatus[d.PaymentStatus] = st
	}

	if rep.TotalCount > 0 {
		rep.AverageAmount = rep.TotalAmount / float64(rep.TotalCount)
	}
	return rep
}
