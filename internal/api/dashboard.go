package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/goldenleaf/goldpay/internal/service"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.dashboards.ForUser(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboardJSON(dash))
}

func dashboardJSON(d *service.Dashboard) map[string]any {
	categories := make(map[string]float64, len(d.CategoryData))
	for category, spent := range d.CategoryData {
		categories[category] = spent.Rupees()
	}

	trend := make([]map[string]any, 0, len(d.TrendData))
	for _, p := range d.TrendData {
		trend = append(trend, map[string]any{
			"label": p.Label,
			"spent": p.Spent.Rupees(),
		})
	}

	return map[string]any{
		"balance":           d.Balance.Rupees(),
		"cashbackBalance":   d.CashbackBalance.Rupees(),
		"spentThisMonth":    d.SpentThisMonth.Rupees(),
		"cashbackThisMonth": d.CashbackThisMonth.Rupees(),
		"savedThisMonth":    d.SavedThisMonth.Rupees(),
		"categoryData":      categories,
		"trendData":         trend,
	}
}
