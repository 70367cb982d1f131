package request

// CreatePortfolioRequest represents the request body for creating a portfolio
type CreatePortfolioRequest struct {
	Name string `json:"name"`
}

// UpdatePortfolioRequest renames a portfolio. Absent fields are left unchanged.
type UpdatePortfolioRequest struct {
	Name *string `json:"name,omitempty"`
}

// SetActivePortfolioRequest selects the portfolio shown by default.
type SetActivePortfolioRequest struct {
	PortfolioID string `json:"portfolioId"`
}
