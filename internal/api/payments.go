package api

import (
	"fmt"
	"net/http"

	"github.com/goldenleaf/goldpay/internal/models"
	"github.com/goldenleaf/goldpay/internal/money"
	"github.com/goldenleaf/goldpay/internal/service"
)

type sendPaymentRequest struct {
	SenderEmail    string  `json:"senderEmail"`
	RecipientEmail string  `json:"recipientEmail"`
	Amount         float64 `json:"amount"`
	Note           string  `json:"note"`
}

func (s *Server) handleSendPayment(w http.ResponseWriter, r *http.Request) {
	var req sendPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.SenderEmail == "" || req.RecipientEmail == "" || req.Amount == 0 {
		writeError(w, service.BadRequest("missing required fields"))
		return
	}

	result, err := s.payments.Send(r.Context(),
		req.SenderEmail, req.RecipientEmail, money.FromRupees(req.Amount), req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	paymentsTotal.Inc()

	writeJSON(w, http.StatusOK, paymentResponse(result))
}

func paymentResponse(result *service.PaymentResult) map[string]any {
	var rule any
	if result.Rule != "" && result.Cashback > 0 {
		rule = string(result.Rule)
	}
	return map[string]any{
		"message":     fmt.Sprintf("₹%s sent to %s successfully!", result.Transaction.Amount, result.Recipient.Email),
		"transaction": transactionJSON(result.Transaction),
		"cashback":    result.Cashback.Rupees(),
		"rule":        rule,
		"balances": map[string]any{
			"sender": map[string]any{
				"balance":         result.Sender.Balance.Rupees(),
				"cashbackBalance": result.Sender.CashbackBalance.Rupees(),
			},
			"recipient": map[string]any{
				"balance": result.Recipient.Balance.Rupees(),
			},
		},
	}
}

func transactionJSON(t *models.Transaction) map[string]any {
	out := map[string]any{
		"id":         t.ID,
		"senderId":   t.SenderID,
		"receiverId": t.ReceiverID,
		"amount":     t.Amount.Rupees(),
		"note":       t.Note,
		"status":     string(t.Status),
		"timestamp":  t.Timestamp,
	}
	if t.Cashback > 0 {
		out["cashbackAmount"] = t.Cashback.Rupees()
		out["cashbackRule"] = t.CashbackRule
	}
	return out
}
