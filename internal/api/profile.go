package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/goldenleaf/goldpay/internal/money"
	"github.com/goldenleaf/goldpay/internal/service"
)

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetByEmail(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"name":         user.Name,
		"email":        user.Email,
		"balance":      user.Balance.Rupees(),
		"tapLinkId":    user.TapLinkID,
		"financeScore": user.FinanceScore,
		"qrCode":       s.payBaseURL + "/pay/" + user.QRCodeID,
	})
}

func (s *Server) handleQRReceiver(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetByQRCode(r.Context(), chi.URLParam(r, "qrCodeID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"name":      user.Name,
		"email":     user.Email,
		"tapLinkId": user.TapLinkID,
	})
}

type qrPayRequest struct {
	SenderEmail string  `json:"senderEmail"`
	Amount      float64 `json:"amount"`
	Note        string  `json:"note"`
}

func (s *Server) handleQRPay(w http.ResponseWriter, r *http.Request) {
	var req qrPayRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.SenderEmail == "" || req.Amount == 0 {
		writeError(w, service.BadRequest("missing required fields"))
		return
	}

	result, err := s.payments.PayByQRCode(r.Context(),
		req.SenderEmail, chi.URLParam(r, "qrCodeID"), money.FromRupees(req.Amount), req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	paymentsTotal.Inc()

	writeJSON(w, http.StatusOK, paymentResponse(result))
}
