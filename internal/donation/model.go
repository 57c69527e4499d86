// Package donation holds the donation entity, its payment state machine and
// the client-side record store.
package donation

import (
	"encoding/json"
	"strings"
	"time"
)

// PaymentStatus is the donation lifecycle state. Statuses arrive in mixed
// case on the wire and are normalized on ingestion.
type PaymentStatus string

const (
	StatusPending    PaymentStatus = "PENDING"
	StatusProcessing PaymentStatus = "PROCESSING"
	StatusCompleted  PaymentStatus = "COMPLETED"
	StatusFailed     PaymentStatus = "FAILED"
	StatusRefunded   PaymentStatus = "REFUNDED"

	// StatusAll is the list filter wildcard; it is never a donation state.
	StatusAll PaymentStatus = "ALL"
)

// ParsePaymentStatus normalizes a wire value. Unknown values collapse to
// PENDING, the safest non-terminal state to display.
func ParsePaymentStatus(raw string) PaymentStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PROCESSING":
		return StatusProcessing
	case "COMPLETED", "SUCCESS":
		return StatusCompleted
	case "FAILED":
		return StatusFailed
	case "REFUNDED":
		return StatusRefunded
	default:
		return StatusPending
	}
}

// LookupPaymentStatus is the strict variant for caller-supplied filter
// input: unknown values are rejected instead of collapsed, so a typo'd
// filter fails loudly rather than silently matching PENDING. ALL is
// accepted as the wildcard.
func LookupPaymentStatus(raw string) (PaymentStatus, bool) {
	status := PaymentStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch status {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusRefunded, StatusAll:
		return status, true
	default:
		return "", false
	}
}

func (s *PaymentStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParsePaymentStatus(raw)
	return nil
}

// Terminal reports whether the state admits no further transition in this
// subsystem. A reversal arrives as a new REFUNDED donation, never as a
// resurrection of a terminal record.
func (s PaymentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusRefunded
}

// CanTransition encodes the forward-only rule. REFUNDED stays reachable
// straight from PENDING; see DESIGN.md for the product question behind that.
func CanTransition(from, to PaymentStatus) bool {
	if from == to {
		return false
	}
	switch from {
	case StatusPending:
		return to == StatusProcessing || to == StatusCompleted || to == StatusFailed || to == StatusRefunded
	case StatusProcessing:
		return to == StatusCompleted || to == StatusFailed || to == StatusRefunded
	default:
		return false
	}
}

// PaymentMethod is the closed set of payment channels the portal reports on.
type PaymentMethod string

const (
	MethodUPI        PaymentMethod = "UPI"
	MethodCard       PaymentMethod = "CARD"
	MethodNetBanking PaymentMethod = "NETBANKING"
	MethodCash       PaymentMethod = "CASH"
	MethodCheque     PaymentMethod = "CHEQUE"
	MethodWallet     PaymentMethod = "WALLET"
	MethodOther      PaymentMethod = "OTHER"
)

// ParsePaymentMethod normalizes a wire value; unknown channels group under
// OTHER so breakdowns stay keyed by the enum.
func ParsePaymentMethod(raw string) PaymentMethod {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "UPI":
		return MethodUPI
	case "CARD", "CREDIT_CARD", "DEBIT_CARD":
		return MethodCard
	case "NETBANKING", "NET_BANKING":
		return MethodNetBanking
	case "CASH":
		return MethodCash
	case "CHEQUE", "CHECK":
		return MethodCheque
	case "WALLET":
		return MethodWallet
	default:
		return MethodOther
	}
}

// LookupPaymentMethod is the strict variant for caller-supplied filter
// input; only the closed enum is accepted.
func LookupPaymentMethod(raw string) (PaymentMethod, bool) {
	method := PaymentMethod(strings.ToUpper(strings.TrimSpace(raw)))
	switch method {
	case MethodUPI, MethodCard, MethodNetBanking, MethodCash, MethodCheque, MethodWallet, MethodOther:
		return method, true
	default:
		return "", false
	}
}

func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = ParsePaymentMethod(raw)
	return nil
}

// DonorRef identifies the donor on a record. UserID is empty for offline
// donors who never registered.
type DonorRef struct {
	UserID string `json:"userId,omitempty"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
}

// VolunteerRef identifies the volunteer who collected an offline donation.
type VolunteerRef struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Donation mirrors the backend record. Every status shown locally is a value
// the backend returned; the client never invents a transition.
type Donation struct {
	DonationID    string        `json:"donationId"`
	Amount        float64       `json:"amount"`
	Method        PaymentMethod `json:"paymentMethod"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	Donor         DonorRef      `json:"donor"`
	CollectedBy   *VolunteerRef `json:"collectedByVolunteer,omitempty"`
	Cause         string        `json:"cause"`
	DonationType  string        `json:"donationType"`
	DonorType     string        `json:"donorType"`
	City          string        `json:"city"`
	State         string        `json:"state"`
	Country       string        `json:"country"`
	TransactionID string        `json:"transactionId"`
	ReceiptURL    string        `json:"receiptUrl"`
	CreatedAt     time.Time     `json:"createdAt"`
}
