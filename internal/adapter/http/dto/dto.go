package dto

// Monetary amounts cross the wire as decimal strings, never floats.

// TransferRequest is the request body for a peer-to-peer transfer.
type TransferRequest struct {
	// Recipient is an account id or the recipient's email.
	Recipient string `json:"recipient" binding:"required,max=254"`
	Amount    string `json:"amount" binding:"required,decimal_amount"`
	Currency  string `json:"currency" binding:"required,currency_code"`
}

// SwapRequest is the request body for a currency swap.
type SwapRequest struct {
	FromAsset string `json:"from_asset" binding:"required,currency_code"`
	ToAsset   string `json:"to_asset" binding:"required,currency_code"`
	Amount    string `json:"amount" binding:"required,decimal_amount"`
}

// WithdrawalRequest is the request body for a crypto withdrawal.
type WithdrawalRequest struct {
	Asset   string `json:"asset" binding:"required,currency_code"`
	Amount  string `json:"amount" binding:"required,decimal_amount"`
	Address string `json:"address" binding:"required,max=128"`
}

// DepositWebhookRequest is the request body delivered by external payment
// and chain-watcher collaborators.
type DepositWebhookRequest struct {
	CorrelationKey string `json:"correlation_key" binding:"required,max=128"`
	Destination    string `json:"destination" binding:"required,max=254"`
	Asset          string `json:"asset" binding:"required,currency_code"`
	Amount         string `json:"amount" binding:"required,decimal_amount"`
}

// TransferResponse is the response body for a completed transfer.
type TransferResponse struct {
	ID          string `json:"id"`
	RecipientID string `json:"recipient_id"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Fee         string `json:"fee"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

// SwapResponse is the response body for a completed swap.
type SwapResponse struct {
	ID          string `json:"id"`
	FromAsset   string `json:"from_asset"`
	ToAsset     string `json:"to_asset"`
	FromAmount  string `json:"from_amount"`
	ToAmount    string `json:"to_amount"`
	RateApplied string `json:"rate_applied"`
	CreatedAt   string `json:"created_at"`
}

// WithdrawalResponse is the response body for a withdrawal.
type WithdrawalResponse struct {
	ID        string  `json:"id"`
	Asset     string  `json:"asset"`
	Amount    string  `json:"amount"`
	Address   string  `json:"address"`
	Status    string  `json:"status"`
	TxHash    *string `json:"tx_hash,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// DepositAckResponse acknowledges a deposit notification.
type DepositAckResponse struct {
	DepositID string `json:"deposit_id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// BalanceResponse is one currency balance of the account.
type BalanceResponse struct {
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
}

// LedgerEntryResponse is one statement line.
type LedgerEntryResponse struct {
	ID          string  `json:"id"`
	EntryType   string  `json:"entry_type"`
	Amount      string  `json:"amount"`
	Currency    string  `json:"currency"`
	Description string  `json:"description"`
	ReferenceID *string `json:"reference_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// StatementResponse wraps a paginated ledger statement.
type StatementResponse struct {
	Items      []LedgerEntryResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}
