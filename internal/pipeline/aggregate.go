package pipeline

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Summary holds the overall totals of a table.
type Summary struct {
	TotalOrders         int             `json:"total_orders"`
	OrderTotal          decimal.Decimal `json:"order_total"`
	InitialCancellation decimal.Decimal `json:"initial_cancellation"`
	Reversal            decimal.Decimal `json:"reversal"`
	FinalCancellation   decimal.Decimal `json:"final_cancellation"`
	PercentageBefore    decimal.Decimal `json:"percentage_before"`
	PercentageAfter     decimal.Decimal `json:"percentage_after"`
}

// RegionGroup holds the totals of rows sharing a region.
type RegionGroup struct {
	Region              string          `json:"region"`
	InitialCancellation decimal.Decimal `json:"initial_cancellation"`
	Reversal            decimal.Decimal `json:"reversal"`
	FinalCancellation   decimal.Decimal `json:"final_cancellation"`
	OrderTotal          decimal.Decimal `json:"order_total"`
	PercentageBefore    decimal.Decimal `json:"percentage_before"`
	PercentageAfter     decimal.Decimal `json:"percentage_after"`
}

// StatusGroup holds the totals of rows sharing a status. Unlike regions it
// carries no percentages.
type StatusGroup struct {
	Status              string          `json:"status"`
	InitialCancellation decimal.Decimal `json:"initial_cancellation"`
	Reversal            decimal.Decimal `json:"reversal"`
	FinalCancellation   decimal.Decimal `json:"final_cancellation"`
	OrderTotal          decimal.Decimal `json:"order_total"`
}

// Result is derived from a Table on every read and never stored.
type Result struct {
	Summary  Summary       `json:"summary"`
	ByRegion []RegionGroup `json:"by_region"`
	ByStatus []StatusGroup `json:"by_status"`
	Rows     []Row         `json:"rows"`
}

// Percentage returns part/whole*100 rounded to two places, or zero when whole is zero.
func Percentage(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}

// Aggregate computes the summary and the region and status breakdowns.
// Groups appear in the order their key is first seen; keys compare by exact
// string equality.
func Aggregate(t Table) Result {
	res := Result{
		Summary: Summary{
			TotalOrders:         len(t.Rows),
			OrderTotal:          decimal.Zero,
			InitialCancellation: decimal.Zero,
			Reversal:            decimal.Zero,
			FinalCancellation:   decimal.Zero,
		},
		ByRegion: make([]RegionGroup, 0),
		ByStatus: make([]StatusGroup, 0),
		Rows:     t.Rows,
	}
	if res.Rows == nil {
		res.Rows = make([]Row, 0)
	}

	regionIdx := make(map[string]int)
	statusIdx := make(map[string]int)

	for _, r := range t.Rows {
		s := &res.Summary
		s.OrderTotal = s.OrderTotal.Add(r.OrderTotal)
		s.InitialCancellation = s.InitialCancellation.Add(r.InitialCancellation)
		s.Reversal = s.Reversal.Add(r.Reversal)
		s.FinalCancellation = s.FinalCancellation.Add(r.FinalCancellation)

		i, ok := regionIdx[r.Region]
		if !ok {
			i = len(res.ByRegion)
			regionIdx[r.Region] = i
			res.ByRegion = append(res.ByRegion, RegionGroup{Region: r.Region})
		}
		g := &res.ByRegion[i]
		g.InitialCancellation = g.InitialCancellation.Add(r.InitialCancellation)
		g.Reversal = g.Reversal.Add(r.Reversal)
		g.FinalCancellation = g.FinalCancellation.Add(r.FinalCancellation)
		g.OrderTotal = g.OrderTotal.Add(r.OrderTotal)

		j, ok := statusIdx[r.Status]
		if !ok {
			j = len(res.ByStatus)
			statusIdx[r.Status] = j
			res.ByStatus = append(res.ByStatus, StatusGroup{Status: r.Status})
		}
		sg := &res.ByStatus[j]
		sg.InitialCancellation = sg.InitialCancellation.Add(r.InitialCancellation)
		sg.Reversal = sg.Reversal.Add(r.Reversal)
		sg.FinalCancellation = sg.FinalCancellation.Add(r.FinalCancellation)
		sg.OrderTotal = sg.OrderTotal.Add(r.OrderTotal)
	}

	res.Summary.PercentageBefore = Percentage(res.Summary.InitialCancellation, res.Summary.OrderTotal)
	res.Summary.PercentageAfter = Percentage(res.Summary.FinalCancellation, res.Summary.OrderTotal)
	for i := range res.ByRegion {
		g := &res.ByRegion[i]
		g.PercentageBefore = Percentage(g.InitialCancellation, g.OrderTotal)
		g.PercentageAfter = Percentage(g.FinalCancellation, g.OrderTotal)
	}
	return res
}
