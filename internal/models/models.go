// Package models defines the core data structures for the signup conversation service.
//
// It includes the incrementally-built application record, plan definitions, session
// and transcript types, and the finalized application handed to persistence.
package models

import (
	"errors"
	"fmt"
	"time"
)

// CustomerType identifies the customer's current electricity arrangement.
type CustomerType string

const (
	// CustomerTypeSP is a customer on the default SP Services supply.
	CustomerTypeSP CustomerType = "SP"
	// CustomerTypeRetailer is a customer contracted with another retailer.
	CustomerTypeRetailer CustomerType = "RETAILER"
)

// PlanType distinguishes the two plan families.
type PlanType string

const (
	// PlanTypePowerFIX is a fixed-rate plan for the contract duration.
	PlanTypePowerFIX PlanType = "PowerFIX"
	// PlanTypePowerDOT is a percentage discount off the regulated tariff.
	PlanTypePowerDOT PlanType = "PowerDOT"
)

// Plan represents a selectable electricity plan. Rate fields apply to PowerFIX
// plans, DiscountPercent to PowerDOT plans.
type Plan struct {
	Type            PlanType `json:"type"`
	DurationMonths  int      `json:"duration_months"`
	RateBeforeGST   float64  `json:"rate_before_gst,omitempty"`
	RateWithGST     float64  `json:"rate_with_gst,omitempty"`
	BillRebate      float64  `json:"bill_rebate,omitempty"`
	DiscountPercent float64  `json:"discount_percent,omitempty"`
	IsRecommended   bool     `json:"is_recommended,omitempty"`
	IsHotPick       bool     `json:"is_hot_pick,omitempty"`
}

// Key returns the distribution label for the plan, e.g. "PowerFIX24".
func (p Plan) Key() string {
	return fmt.Sprintf("%s%d", p.Type, p.DurationMonths)
}

// InsuranceType identifies the complimentary insurance product chosen at opt-in.
type InsuranceType string

const (
	InsurancePersonalAccident InsuranceType = "Personal Accident"
	InsuranceHome             InsuranceType = "Home"
	InsuranceTravel           InsuranceType = "Travel"
)

// Insurance records the opt-in decision and, when opted in, the chosen type.
type Insurance struct {
	OptedIn bool          `json:"opted_in"`
	Type    InsuranceType `json:"type,omitempty"`
}

// PremiseType distinguishes owner-occupied from tenanted premises.
type PremiseType string

const (
	PremiseOwner  PremiseType = "Owner"
	PremiseTenant PremiseType = "Tenant"
)

// AccountHolder holds the identity details collected during PERSONAL_DETAILS.
// Only the masked last four characters of the NRIC are ever stored.
// IsAccountHolder is a pointer so that "not yet answered" is distinguishable
// from an explicit "no".
type AccountHolder struct {
	FullName        string `json:"full_name,omitempty"`
	NRICLast4       string `json:"nric_last4,omitempty"`
	DateOfBirth     string `json:"date_of_birth,omitempty"` // DD-MM-YYYY
	Mobile          string `json:"mobile,omitempty"`
	Email           string `json:"email,omitempty"`
	IsAccountHolder *bool  `json:"is_account_holder,omitempty"`
	AltHolderName   string `json:"alt_holder_name,omitempty"`
}

// Premise holds the supply address collected during PREMISE_DETAILS.
// BuildingName is a pointer because an empty string is a deliberate
// "no building name" answer, distinct from "not yet answered".
type Premise struct {
	PostalCode         string      `json:"postal_code,omitempty"`
	UnitNumber         string      `json:"unit_number,omitempty"`
	BlockNumber        string      `json:"block_number,omitempty"`
	BuildingName       *string     `json:"building_name,omitempty"`
	StreetName         string      `json:"street_name,omitempty"`
	PremiseType        PremiseType `json:"premise_type,omitempty"`
	MailingAddressSame *bool       `json:"mailing_address_same,omitempty"`
	MailingAddress     string      `json:"mailing_address,omitempty"`
}

// ApplicationRecord is the accumulating signup data for one conversation.
// Fields are written last-write-wins by the engine as stages progress.
type ApplicationRecord struct {
	CustomerType       CustomerType    `json:"customer_type,omitempty"`
	CurrentRetailer    string          `json:"current_retailer,omitempty"`
	ContractEndDate    string          `json:"contract_end_date,omitempty"` // DD-MM-YYYY
	SelectedPlan       *Plan           `json:"selected_plan,omitempty"`
	AccountHolder      AccountHolder   `json:"account_holder,omitempty"`
	Premise            Premise         `json:"premise,omitempty"`
	PreferredStartDate string          `json:"preferred_start_date,omitempty"`
	Insurance          *Insurance      `json:"insurance,omitempty"`
	DigitalSignature   string          `json:"digital_signature,omitempty"`
	RejectionReason    RejectionReason `json:"rejection_reason,omitempty"`
}

// ValidationError describes why a user-supplied value was refused, phrased for
// direct display to the user.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MessageRole identifies the speaker of a transcript entry.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one transcript entry.
type Message struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// ConversationSession is the unit the engine operates on and the unit the
// transport layer renders: current stage, accumulated record, transcript,
// and the validation errors raised by the most recent turn.
type ConversationSession struct {
	ID            string            `json:"id"`
	Stage         ConversationStage `json:"stage"`
	Status        SessionStatus     `json:"status"`
	Record        ApplicationRecord `json:"record"`
	Transcript    []Message         `json:"transcript"`
	PendingErrors []ValidationError `json:"pending_errors,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Finalized application bookkeeping constants.
const (
	// CampaignCode is the fixed promotion code attached to every submission.
	CampaignCode = "TPRS25"
	// AgentID identifies the chatbot agent on finalized applications.
	AgentID = "BOT_001"
	// ApplicationStatusPendingBill is the status of every freshly submitted application.
	ApplicationStatusPendingBill = "PENDING_BILL_SUBMISSION"
)

// FinalizedApplication is the immutable record produced exactly once at the
// SIGNATURE -> COMPLETED transition and handed to persistence.
type FinalizedApplication struct {
	ReferenceID        string        `json:"reference_id"`
	SubmittedAt        time.Time     `json:"submitted_at"`
	CustomerType       CustomerType  `json:"customer_type"`
	CurrentRetailer    string        `json:"current_retailer,omitempty"`
	ContractEndDate    string        `json:"contract_end_date,omitempty"`
	SelectedPlan       Plan          `json:"selected_plan"`
	AccountHolder      AccountHolder `json:"account_holder"`
	Premise            Premise       `json:"premise"`
	PreferredStartDate string        `json:"preferred_start_date"`
	Insurance          Insurance     `json:"insurance"`
	DigitalSignature   string        `json:"digital_signature"`
	SignatureTimestamp time.Time     `json:"signature_timestamp"`
	AgreedToTerms      bool          `json:"agreed_to_terms"`
	CampaignCode       string        `json:"campaign_code"`
	Status             string        `json:"status"`
	ConversationID     string        `json:"conversation_id"`
	AgentID            string        `json:"agent_id"`
}

// Error variables for better error handling and testability
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionTerminal = errors.New("session has reached a terminal stage")
	ErrEmptyMessage    = errors.New("message cannot be empty")
)
