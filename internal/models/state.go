// Package models defines conversation stage and rejection types shared across modules.
package models

// ConversationStage represents one node in the signup conversation state machine.
type ConversationStage string

// Stage constants for the signup conversation flow.
const (
	StageGreeting                   ConversationStage = "GREETING"
	StageCustomerTypeIdentification ConversationStage = "CUSTOMER_TYPE_IDENTIFICATION"
	StageEdgeCaseCheck              ConversationStage = "EDGE_CASE_CHECK"
	StagePlanEducation              ConversationStage = "PLAN_EDUCATION"
	StagePlanSelection              ConversationStage = "PLAN_SELECTION"
	StagePersonalDetails            ConversationStage = "PERSONAL_DETAILS"
	StagePremiseDetails             ConversationStage = "PREMISE_DETAILS"
	StageStartDate                  ConversationStage = "START_DATE"
	StageInsuranceOptIn             ConversationStage = "INSURANCE_OPTIN"
	StageConfirmation               ConversationStage = "CONFIRMATION"
	StageSignature                  ConversationStage = "SIGNATURE"
	StageCompleted                  ConversationStage = "COMPLETED"
	StageRejected                   ConversationStage = "REJECTED"
)

// AllStages lists every stage in flow order. Used for metrics label initialization
// and exhaustiveness checks in tests.
var AllStages = []ConversationStage{
	StageGreeting,
	StageCustomerTypeIdentification,
	StageEdgeCaseCheck,
	StagePlanEducation,
	StagePlanSelection,
	StagePersonalDetails,
	StagePremiseDetails,
	StageStartDate,
	StageInsuranceOptIn,
	StageConfirmation,
	StageSignature,
	StageCompleted,
	StageRejected,
}

// IsTerminal reports whether the stage accepts no further transitions.
func (s ConversationStage) IsTerminal() bool {
	return s == StageCompleted || s == StageRejected
}

// IsValidStage checks if the given stage is part of the signup flow.
func IsValidStage(s ConversationStage) bool {
	for _, stage := range AllStages {
		if s == stage {
			return true
		}
	}
	return false
}

// RejectionReason identifies why a signup conversation was terminated at screening.
type RejectionReason string

// Rejection reason constants, in screening priority order.
const (
	RejectionSolarPanels      RejectionReason = "SOLAR_PANELS"
	RejectionPayUScheme       RejectionReason = "PAYU_SCHEME"
	RejectionExistingCustomer RejectionReason = "EXISTING_CUSTOMER"
	RejectionReferralCode     RejectionReason = "REFERRAL_CODE_REQUEST"
)

// AllRejectionReasons lists every rejection reason for metrics label initialization.
var AllRejectionReasons = []RejectionReason{
	RejectionSolarPanels,
	RejectionPayUScheme,
	RejectionExistingCustomer,
	RejectionReferralCode,
}

// SessionStatus represents the lifecycle status of a conversation session.
type SessionStatus string

const (
	// SessionStatusActive indicates the conversation is in progress.
	SessionStatusActive SessionStatus = "active"
	// SessionStatusCompleted indicates the signup finished with a submitted application.
	SessionStatusCompleted SessionStatus = "completed"
	// SessionStatusRejected indicates the conversation ended at a screening gate.
	SessionStatusRejected SessionStatus = "rejected"
	// SessionStatusAbandoned indicates the session idled out before reaching a terminal stage.
	SessionStatusAbandoned SessionStatus = "abandoned"
)
