package core

// MonthlyTrend is one point of the trailing trend series: the total and
// count of expenses dated within a single calendar (year, month).
type MonthlyTrend struct {
	Year  int     `json:"year"`
	Month int     `json:"month"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// DashboardStats is the derived read-only aggregation over all expenses at
// a point in time. CategoryBreakdown is sparse: categories with no matching
// records are omitted rather than reported as zero.
type DashboardStats struct {
	TotalExpenses     float64            `json:"total_expenses"`
	CategoryBreakdown map[string]float64 `json:"category_breakdown"`
	MonthlyTrends     []MonthlyTrend     `json:"monthly_trends"`
	AverageExpense    float64            `json:"average_expense"`
	TotalCount        int                `json:"total_count"`
}
