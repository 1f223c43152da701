package handler

import "github.com/codinBabe/stock-tracker-app/internal/model"

type AddWatchlistRequest struct {
	Symbol  string `json:"symbol" binding:"required"`
	Company string `json:"company"`
}

type CreateUserRequest struct {
	Email             string `json:"email" binding:"required,email"`
	Name              string `json:"name" binding:"required"`
	Country           string `json:"country"`
	InvestmentGoals   string `json:"investmentGoals"`
	RiskTolerance     string `json:"riskTolerance"`
	PreferredIndustry string `json:"preferredIndustry"`
}

type SearchResponse struct {
	Query  string            `json:"query"`
	Stocks []model.Candidate `json:"stocks"`
}

type NewsResponse struct {
	Articles []model.Article `json:"articles"`
	Count    int             `json:"count"`
}
