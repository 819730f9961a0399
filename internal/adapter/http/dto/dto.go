package dto

// TransactionRequest is the request body for submitting a transaction.
type TransactionRequest struct {
	Type            string  `json:"type" binding:"required,txn_type"`
	Amount          string  `json:"amount" binding:"required,money"`
	TransactionDate *string `json:"transaction_date,omitempty" binding:"omitempty,datetime=2006-01-02"`
	PaymentTypeID   *int64  `json:"payment_type_id,omitempty" binding:"omitempty,gt=0"`
}

// TransactionResponse is the response body for an appended transaction.
type TransactionResponse struct {
	ID              string `json:"id"`
	AccountID       string `json:"account_id"`
	Type            string `json:"type"`
	Amount          string `json:"amount"`
	TransactionDate string `json:"transaction_date"`
	CreatedAt       string `json:"created_at"`
	PaymentTypeID   *int64 `json:"payment_type_id,omitempty"`
}

// BalanceResponse is the response body for balance reads and recomputes.
type BalanceResponse struct {
	AccountID           string  `json:"account_id"`
	AccountBalance      string  `json:"account_balance"`
	HoldAmount          string  `json:"hold_amount"`
	AvailableBalance    string  `json:"available_balance"`
	CalculatedTill      *string `json:"calculated_till"`
	CalculatedTillTxnID *string `json:"calculated_till_txn_id,omitempty"`
}

// JournalEntryResponse is one GL journal entry.
type JournalEntryResponse struct {
	ID              string `json:"id"`
	GLAccount       string `json:"gl_account"`
	EntryType       string `json:"entry_type"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	TransactionID   string `json:"transaction_id"`
	TransactionDate string `json:"transaction_date"`
	SubmittedOnDate string `json:"submitted_on_date"`
	Overdraft       bool   `json:"overdraft"`
}

// PostingResponse is the response body for a manual posting run.
type PostingResponse struct {
	AccountID      string                 `json:"account_id"`
	Processed      int                    `json:"processed"`
	Skipped        bool                   `json:"skipped"`
	RunningBalance string                 `json:"running_balance"`
	Entries        []JournalEntryResponse `json:"entries"`
}

// JournalQuery holds the query parameters of the journal listing.
type JournalQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

// BatchReportResponse is the response body for a triggered batch job.
type BatchReportResponse struct {
	Job        string `json:"job"`
	Till       string `json:"till"`
	Selected   int    `json:"selected"`
	Succeeded  int    `json:"succeeded"`
	Failed     int    `json:"failed"`
	DurationMS int64  `json:"duration_ms"`
}
