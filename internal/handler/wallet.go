package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"farebroker/internal/domain"
	"farebroker/internal/service"
)

// WalletHandler handles HTTP requests for wallets.
type WalletHandler struct {
	ledger *service.WalletLedger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledger *service.WalletLedger) *WalletHandler {
	return &WalletHandler{ledger: ledger}
}

// TopupRequest is the HTTP request body for topping up a wallet.
type TopupRequest struct {
	Amount      float64 `json:"amount"`
	Reference   string  `json:"reference,omitempty"`
	Description string  `json:"description,omitempty"`
}

// WithdrawRequest is the HTTP request body for withdrawing from a wallet.
type WithdrawRequest struct {
	Amount      float64 `json:"amount"`
	Reference   string  `json:"reference,omitempty"`
	Description string  `json:"description,omitempty"`
}

// TransactionResponse is one wallet transaction in HTTP responses.
type TransactionResponse struct {
	ID           string  `json:"id"`
	Type         string  `json:"type"`
	Amount       float64 `json:"amount"`
	Reference    string  `json:"reference,omitempty"`
	Description  string  `json:"description,omitempty"`
	Status       string  `json:"status"`
	BalanceAfter float64 `json:"balance_after"`
	CreatedAt    string  `json:"created_at"`
}

// WalletResponse is the HTTP response for wallet operations.
type WalletResponse struct {
	UserID       string                `json:"user_id"`
	Balance      float64               `json:"balance"`
	Currency     string                `json:"currency"`
	Transactions []TransactionResponse `json:"transactions,omitempty"`
}

// GetWallet handles GET /v1/wallets/:userId
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID := c.Param("userId")

	wallet, err := h.ledger.Wallet(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	txns, err := h.ledger.Transactions(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toWalletResponse(wallet, txns))
}

// Topup handles POST /v1/wallets/:userId/topup
func (h *WalletHandler) Topup(c *gin.Context) {
	var req TopupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	txn, err := h.ledger.Credit(c.Request.Context(), c.Param("userId"), req.Amount, req.Reference, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toTransactionResponse(txn))
}

// Withdraw handles POST /v1/wallets/:userId/withdraw
func (h *WalletHandler) Withdraw(c *gin.Context) {
	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	txn, err := h.ledger.Withdraw(c.Request.Context(), c.Param("userId"), req.Amount, req.Reference, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toTransactionResponse(txn))
}

func toWalletResponse(wallet *domain.Wallet, txns []*domain.WalletTransaction) WalletResponse {
	resp := WalletResponse{
		UserID:   wallet.UserID,
		Balance:  wallet.Balance,
		Currency: wallet.Currency,
	}
	for _, txn := range txns {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(txn))
	}
	return resp
}

func toTransactionResponse(txn *domain.WalletTransaction) TransactionResponse {
	return TransactionResponse{
		ID:           txn.ID,
		Type:         string(txn.Type),
		Amount:       txn.Amount,
		Reference:    txn.Reference,
		Description:  txn.Description,
		Status:       string(txn.Status),
		BalanceAfter: txn.BalanceAfter,
		CreatedAt:    txn.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
