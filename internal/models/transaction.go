package models

import (
	"time"

	"github.com/google/uuid"
)

// Transaction type enums. Positive amounts are earn/bonus/admin_add,
// negative amounts are spend/admin_deduct.
const (
	TxTypeEarn        = "earn"
	TxTypeSpend       = "spend"
	TxTypeBonus       = "bonus"
	TxTypeAdminAdd    = "admin_add"
	TxTypeAdminDeduct = "admin_deduct"
)

// Transaction category enums.
const (
	CategorySignupBonus         = "signup_bonus"
	CategoryInterviewCompletion = "interview_completion"
	CategoryContactReveal       = "contact_reveal"
	CategoryInterviewRequest    = "interview_request"
	CategoryInterviewerCert     = "interviewer_certification"
	CategoryAdminAdjustment     = "admin_adjustment"
	CategoryReferralBonus       = "referral_bonus"
	CategoryDailyLogin          = "daily_login"
	CategorySessionTime         = "session_time"
)

// Reference type values for CreditTransaction.ReferenceType.
const (
	RefContactAccess    = "contact_access"
	RefInterviewRequest = "interview_request"
	RefInterviewRating  = "interview_rating"
)

// CreditTransaction is an append-only ledger entry. BalanceFree and
// BalancePaid are the user's bucket balances immediately after the entry
// was applied; entries are never edited or deleted.
type CreditTransaction struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	Amount        int        `json:"amount"`
	Type          string     `json:"transaction_type"`
	Category      string     `json:"category"`
	Description   string     `json:"description"`
	ReferenceID   *uuid.UUID `json:"reference_id,omitempty"`
	ReferenceType *string    `json:"reference_type,omitempty"`
	BalanceFree   int        `json:"balance_free"`
	BalancePaid   int        `json:"balance_paid"`
	ActorID       *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
