package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/goldenleaf/goldpay/internal/models"
	"github.com/goldenleaf/goldpay/internal/money"
	"github.com/goldenleaf/goldpay/internal/service"
)

func (s *Server) handleMyGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.splits.MyGroups(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(groups))
	for _, g := range groups {
		out = append(out, groupJSON(g))
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": out})
}

type createGroupRequest struct {
	Name           string   `json:"name"`
	MemberEmails   []string `json:"memberEmails"`
	CreatedByEmail string   `json:"createdByEmail"`
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, err := s.splits.CreateGroup(r.Context(), req.Name, req.MemberEmails, req.CreatedByEmail)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Group created",
		"group":   groupJSON(group),
	})
}

type createBillRequest struct {
	GroupID      string  `json:"groupId"`
	Title        string  `json:"title"`
	TotalAmount  float64 `json:"totalAmount"`
	PayerEmail   string  `json:"payerEmail"`
	SplitType    string  `json:"splitType"`
	CustomSplits []struct {
		Email  string  `json:"email"`
		Amount float64 `json:"amount"`
	} `json:"customSplits"`
	CreatedByEmail string `json:"createdByEmail"`
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	customSplits := make([]service.CustomSplit, len(req.CustomSplits))
	for i, c := range req.CustomSplits {
		customSplits[i] = service.CustomSplit{
			Email:  c.Email,
			Amount: money.FromRupees(c.Amount),
		}
	}

	bill, err := s.splits.CreateBill(r.Context(),
		req.GroupID, req.Title, money.FromRupees(req.TotalAmount),
		req.PayerEmail, req.SplitType, customSplits, req.CreatedByEmail)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Bill created",
		"bill":    billJSON(bill),
	})
}

func (s *Server) handleGroupBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.splits.GroupBills(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(bills))
	for _, b := range bills {
		out = append(out, billJSON(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{"bills": out})
}

type settleBillRequest struct {
	Execute       bool   `json:"execute"`
	ExecutorEmail string `json:"executorEmail"`
}

func (s *Server) handleSettleBill(w http.ResponseWriter, r *http.Request) {
	var req settleBillRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	outcome, err := s.splits.Settle(r.Context(), chi.URLParam(r, "billID"), req.Execute)
	if err != nil {
		writeError(w, err)
		return
	}

	settlements := make([]map[string]any, 0, len(outcome.Plan))
	for _, t := range outcome.Plan {
		settlements = append(settlements, map[string]any{
			"fromUserId": t.FromUserID,
			"fromEmail":  t.FromEmail,
			"toUserId":   t.ToUserID,
			"toEmail":    t.ToEmail,
			"amount":     t.Amount.Rupees(),
		})
	}

	resp := map[string]any{
		"settlements": settlements,
		"executed":    outcome.Executed,
	}
	if outcome.Executed {
		resp["completed"] = outcome.Completed
		resp["skipped"] = outcome.Skipped
		settlementTransfers.WithLabelValues("completed").Add(float64(outcome.Completed))
		settlementTransfers.WithLabelValues("skipped").Add(float64(outcome.Skipped))
	}
	writeJSON(w, http.StatusOK, resp)
}

func groupJSON(g *models.Group) map[string]any {
	members := make([]map[string]string, len(g.Members))
	for i, m := range g.Members {
		members[i] = map[string]string{
			"userId": m.UserID,
			"email":  m.Email,
			"name":   m.Name,
		}
	}
	return map[string]any{
		"id":        g.ID,
		"name":      g.Name,
		"members":   members,
		"createdBy": g.CreatedBy,
		"createdAt": g.CreatedAt,
	}
}

func billJSON(b *models.Bill) map[string]any {
	splits := make([]map[string]any, len(b.Splits))
	for i, sp := range b.Splits {
		splits[i] = map[string]any{
			"userId":     sp.UserID,
			"email":      sp.Email,
			"owedAmount": sp.Owed.Rupees(),
			"paidAmount": sp.Paid.Rupees(),
		}
	}
	return map[string]any{
		"id":          b.ID,
		"groupId":     b.GroupID,
		"title":       b.Title,
		"totalAmount": b.Total.Rupees(),
		"createdBy":   b.CreatedBy,
		"payerId":     b.PayerID,
		"splits":      splits,
		"status":      string(b.Status),
		"createdAt":   b.CreatedAt,
	}
}
