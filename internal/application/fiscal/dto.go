package fiscal

// Default equity account codes the close engine targets. Organizations with
// a different chart of accounts override them per request.
const (
	DefaultRetainedEarningsCode    = "3200"
	DefaultCurrentYearEarningsCode = "3300"
)

// CloseRequest identifies the period to close and where earnings land
type CloseRequest struct {
	Year  int `json:"year" binding:"required"`
	Month int `json:"month" binding:"required"`

	// Optional overrides for the equity accounts; defaults apply when empty
	RetainedEarningsCode    string `json:"retained_earnings_code"`
	CurrentYearEarningsCode string `json:"current_year_earnings_code"`

	// Optional code for the generated closing transaction
	TransactionCode string `json:"transaction_code"`
}

func (r *CloseRequest) applyDefaults() {
	if r.RetainedEarningsCode == "" {
		r.RetainedEarningsCode = DefaultRetainedEarningsCode
	}
	if r.CurrentYearEarningsCode == "" {
		r.CurrentYearEarningsCode = DefaultCurrentYearEarningsCode
	}
}

// GeneratePeriodsRequest provisions the fiscal-period rows for one year
type GeneratePeriodsRequest struct {
	Year int `json:"year" binding:"required"`
}

// PeriodResponse is the API view of one fiscal period
type PeriodResponse struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Status string `json:"status"`
}
