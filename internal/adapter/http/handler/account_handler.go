package handler

import (
	"time"

	"current-account-ledger/internal/adapter/http/dto"
	"current-account-ledger/internal/core/domain"
	"current-account-ledger/internal/core/ports"
	"current-account-ledger/pkg/apperror"
	"current-account-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultJournalLimit = 50

// AccountHandler serves the per-account balance, transaction and posting
// endpoints.
type AccountHandler struct {
	balanceSvc   ports.BalanceService
	txnSvc       ports.TransactionService
	poster       ports.JournalPoster
	journalRepo  ports.JournalRepository
	postingDelay time.Duration
	now          func() time.Time
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(
	balanceSvc ports.BalanceService,
	txnSvc ports.TransactionService,
	poster ports.JournalPoster,
	journalRepo ports.JournalRepository,
	postingDelay time.Duration,
) *AccountHandler {
	return &AccountHandler{
		balanceSvc:   balanceSvc,
		txnSvc:       txnSvc,
		poster:       poster,
		journalRepo:  journalRepo,
		postingDelay: postingDelay,
		now:          time.Now,
	}
}

// GetBalance handles GET /api/v1/accounts/:id/balance.
func (h *AccountHandler) GetBalance(c *gin.Context) {
	accountID, ok := accountParam(c)
	if !ok {
		return
	}

	balance, err := h.balanceSvc.GetBalance(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toBalanceResponse(balance))
}

// Recompute handles POST /api/v1/accounts/:id/balance/recompute.
func (h *AccountHandler) Recompute(c *gin.Context) {
	accountID, ok := accountParam(c)
	if !ok {
		return
	}

	balance, err := h.balanceSvc.Recompute(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toBalanceResponse(balance))
}

// SubmitTransaction handles POST /api/v1/accounts/:id/transactions.
func (h *AccountHandler) SubmitTransaction(c *gin.Context) {
	accountID, ok := accountParam(c)
	if !ok {
		return
	}

	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	cmd, err := toTransactionCommand(accountID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	txn, err := h.txnSvc.Submit(c.Request.Context(), cmd)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransactionResponse(txn))
}

// PostJournal handles POST /api/v1/accounts/:id/postings. Transactions
// newer than the posting delay are left for a later run.
func (h *AccountHandler) PostJournal(c *gin.Context) {
	accountID, ok := accountParam(c)
	if !ok {
		return
	}

	till := h.now().UTC().Add(-h.postingDelay)
	result, err := h.poster.PostAccount(c.Request.Context(), accountID, till)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toPostingResponse(result))
}

// ListJournalEntries handles GET /api/v1/accounts/:id/journal-entries.
func (h *AccountHandler) ListJournalEntries(c *gin.Context) {
	accountID, ok := accountParam(c)
	if !ok {
		return
	}

	var q dto.JournalQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	if q.Limit == 0 {
		q.Limit = defaultJournalLimit
	}

	entries, err := h.journalRepo.ListByAccount(c.Request.Context(), accountID, q.Limit)
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}

	response.OK(c, toJournalEntryResponses(entries))
}

// accountParam parses :id and answers 400 itself when it is not a UUID.
func accountParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("account id must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

func toTransactionCommand(accountID uuid.UUID, req dto.TransactionRequest) (ports.TransactionRequest, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return ports.TransactionRequest{}, apperror.ErrInvalidAmount()
	}

	cmd := ports.TransactionRequest{
		AccountID:     accountID,
		Type:          domain.TransactionType(req.Type),
		Amount:        amount,
		PaymentTypeID: req.PaymentTypeID,
	}
	if req.TransactionDate != nil {
		d, err := time.Parse(time.DateOnly, *req.TransactionDate)
		if err != nil {
			return ports.TransactionRequest{}, apperror.Validation("transaction_date must be YYYY-MM-DD")
		}
		cmd.TransactionDate = d
	}
	return cmd, nil
}

func toTransactionResponse(txn *domain.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:              txn.ID.String(),
		AccountID:       txn.AccountID.String(),
		Type:            string(txn.Type),
		Amount:          txn.Amount.String(),
		TransactionDate: txn.TransactionDate.Format(time.DateOnly),
		CreatedAt:       txn.CreatedAt.Format(time.RFC3339Nano),
		PaymentTypeID:   txn.PaymentTypeID,
	}
}

func toBalanceResponse(b *domain.Balance) dto.BalanceResponse {
	resp := dto.BalanceResponse{
		AccountID:        b.AccountID.String(),
		AccountBalance:   b.AccountBalance.String(),
		HoldAmount:       b.HoldAmount.String(),
		AvailableBalance: b.AvailableBalance.String(),
	}
	if b.CalculatedTill != nil {
		till := b.CalculatedTill.Format(time.RFC3339Nano)
		resp.CalculatedTill = &till
	}
	if b.CalculatedTillTxnID != nil {
		id := b.CalculatedTillTxnID.String()
		resp.CalculatedTillTxnID = &id
	}
	return resp
}

func toJournalEntryResponses(entries []domain.JournalEntry) []dto.JournalEntryResponse {
	out := make([]dto.JournalEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.JournalEntryResponse{
			ID:              e.ID.String(),
			GLAccount:       e.GLAccount,
			EntryType:       string(e.EntryType),
			Amount:          e.Amount.String(),
			Currency:        e.Currency,
			TransactionID:   e.TransactionID.String(),
			TransactionDate: e.TransactionDate.Format(time.DateOnly),
			SubmittedOnDate: e.SubmittedOnDate.Format(time.DateOnly),
			Overdraft:       e.Overdraft,
		})
	}
	return out
}

func toPostingResponse(r *ports.PostingResult) dto.PostingResponse {
	return dto.PostingResponse{
		AccountID:      r.AccountID.String(),
		Processed:      r.Processed,
		Skipped:        r.Skipped,
		RunningBalance: r.RunningBalance.String(),
		Entries:        toJournalEntryResponses(r.Entries),
	}
}
