package engine

import (
	"log/slog"
	"strings"
	"time"

	"github.com/tuaspower/signupflow/internal/models"
	"github.com/tuaspower/signupflow/internal/validation"
)

// Engine is the conversation state machine. Each stage handler is a pure
// reducer over (stage, record, utterance); the only injected dependency is the
// clock, so transitions are replayable and testable in isolation.
type Engine struct {
	now func() time.Time
}

// New creates an engine using the wall clock.
func New() *Engine {
	return NewWithClock(time.Now)
}

// NewWithClock creates an engine with an injected clock. Used by the start
// date handler and by tests that pin "today".
func NewWithClock(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// stageHandler computes one turn for a single stage.
type stageHandler func(e *Engine, rec models.ApplicationRecord, utterance string) (models.ApplicationRecord, models.ConversationStage, *models.ValidationError)

// stageHandlers keys every non-terminal stage to its reducer. Terminal stages
// have no entry: the session layer never dispatches to them.
var stageHandlers = map[models.ConversationStage]stageHandler{
	models.StageGreeting:                   (*Engine).handleGreeting,
	models.StageCustomerTypeIdentification: (*Engine).handleCustomerType,
	models.StageEdgeCaseCheck:              (*Engine).handleEdgeCase,
	models.StagePlanEducation:              (*Engine).handlePlanEducation,
	models.StagePlanSelection:              (*Engine).handlePlanSelection,
	models.StagePersonalDetails:            (*Engine).handlePersonalDetails,
	models.StagePremiseDetails:             (*Engine).handlePremiseDetails,
	models.StageStartDate:                  (*Engine).handleStartDate,
	models.StageInsuranceOptIn:             (*Engine).handleInsurance,
	models.StageConfirmation:               (*Engine).handleConfirmation,
	models.StageSignature:                  (*Engine).handleSignature,
}

// Advance processes one utterance at the given stage, returning the updated
// record, the next stage, and at most one validation error. An unrecognized
// utterance leaves both record and stage unchanged with no error (silent
// retry); a recognized-but-invalid value leaves them unchanged and reports
// why.
func (e *Engine) Advance(stage models.ConversationStage, rec models.ApplicationRecord, utterance string) (models.ApplicationRecord, models.ConversationStage, *models.ValidationError) {
	handler, ok := stageHandlers[stage]
	if !ok {
		slog.Warn("Engine.Advance: no handler for stage", "stage", stage)
		return rec, stage, nil
	}
	updated, next, verr := handler(e, rec, utterance)
	if next != stage {
		slog.Info("Engine.Advance: stage transition", "from", stage, "to", next)
	} else {
		slog.Debug("Engine.Advance: stage unchanged", "stage", stage, "hasValidationError", verr != nil)
	}
	return updated, next, verr
}

// GREETING and CUSTOMER_TYPE_IDENTIFICATION share the provider
// classification; each thin wrapper keeps its own stage on a no-match so an
// unrecognized first turn re-asks at GREETING rather than silently moving on.
func (e *Engine) handleGreeting(rec models.ApplicationRecord, utterance string) (models.ApplicationRecord, models.ConversationStage, *models.ValidationError) {
	return e.identifyCustomerType(models.StageGreeting, rec, utterance)
}

func (e *Engine) handleCustomerType(rec models.ApplicationRecord, utterance string) (models.ApplicationRecord, models.ConversationStage, *models.ValidationError) {
	return e.identifyCustomerType(models.StageCustomerTypeIdentification, rec, utterance)
}

// identifyCustomerType classifies the provider, records it, and moves to
// screening. On the retailer path a contract end date volunteered in the same
// utterance is captured so the start date stage can use it later.
func (e *Engine) identifyCustomerType(stage models.ConversationStage, rec models.ApplicationRecord, utterance string) (models.ApplicationRecord, models.ConversationStage, *models.ValidationError) {
	result, ok := DetectCustomerType(utterance)
	if !ok {
		return rec, stage, nil
	}
	rec.CustomerType = result.Type
	rec.CurrentRetailer = result.Retailer
	if result.Type == models.CustomerTypeRetailer {
		if date, found := Extract(FieldDateOfBirth, utterance); found {
			rec.ContractEndDate = date
		}
	}
	return rec, models.StageEdgeCaseCheck, nil
}

// handleEdgeCase is a single combined screening gate: a disqualifier rejects,
// a negation with no disqualifier passes, anything else re-asks.
func (e *Engine) handleEdgeCase(rec models.ApplicationRecord, utterance string) (models.ApplicationRecord, models.ConversationStage, *models.ValidationError) {
	if reason, disqualified := DetectEdgeCase(utterance); disqualified {
		rec.RejectionReason = reason
		return rec, models.StageRejected, nil
	}
	if ContainsNegation(utterance) {
		return rec, models.StagePlanEducation, nil
	}
	return rec, models.StageEdgeCaseCheck, nil
}

func (e *Engine) handlePlanEducation(rec models.ApplicationRecord, utterance string) (models.ApplicationRecord, models.ConversationStage, *models.ValidationError) {
	if _, interested := DetectPlanInterest(utterance); interested {
		return rec, models.StagePlanSelection, nil
	}
	return rec, models.StagePlanEducation, nil
}

func (e *Engine) handlePlanSelection(rec models.ApplicationRecord, utterance string) (models.ApplicationRecord, models.ConversationStage, *models.ValidationError) {
	plan, ok := DetectPlanSelection(utterance)
	if !ok {
		return rec, models.StagePlanSelection, nil
	}
	rec.SelectedPlan = &plan
	return rec, models.StagePersonalDetails, nil
}

// handlePersonalDetails fills the next unfilled account holder field in fixed
// order. Completion is re-checked after every successful write.
func (e *Engine) handlePersonalDetails(rec models.ApplicationRecord, utterance string) (models.ApplicationRecord, models.ConversationStage, *models.ValidationError) {
	verr := fillNextField(&rec, personalSteps, utterance)
	if verr != nil {
		return rec, models.StagePersonalDetails, verr
	}
	if allStepsSet(&rec, personalSteps) {
		return rec, models.StagePremiseDetails, nil
	}
	return rec, models.StagePersonalDetails, nil
}

// handlePremiseDetails mirrors handlePersonalDetails with the premise's
// seven-field order.
func (e *Engine) handlePremiseDetails(rec models.ApplicationRecord, utterance string) (models.ApplicationRecord, models.ConversationStage, *models.ValidationError) {
	verr := fillNextField(&rec, premiseSteps, utterance)
	if verr != nil {
		return rec, models.StagePremiseDetails, verr
	}
	if allStepsSet(&rec, premiseSteps) {
		return rec, models.StageStartDate, nil
	}
	return rec, models.StagePremiseDetails, nil
}

// handleStartDate branches on customer type. SP customers accept the default
// of 14 working days from today; retailer customers accept the day after
// their contract ends, falling back to the working-day default when no
// contract end date was captured.
func (e *Engine) handleStartDate(rec models.ApplicationRecord, utterance string) (models.ApplicationRecord, models.ConversationStage, *models.ValidationError) {
	lower := strings.ToLower(utterance)

	if rec.CustomerType == models.CustomerTypeSP {
		if strings.Contains(lower, "fine") || strings.Contains(lower, "good") || strings.Contains(lower, "ok") || strings.Contains(lower, "yes") {
			rec.PreferredStartDate = validation.FormatDate(validation.WorkingDaysFrom(e.now(), 14))
			return rec, models.StageInsuranceOptIn, nil
		}
		return rec, models.StageStartDate, nil
	}

	if IsAffirmative(utterance) {
		if rec.ContractEndDate != "" {
			if start, err := validation.StartDateFromContractEnd(rec.ContractEndDate); err == nil {
				rec.PreferredStartDate = validation.FormatDate(start)
				return rec, models.StageInsuranceOptIn, nil
			}
			slog.Warn("Engine.handleStartDate: unparseable contract end date, using working-day default", "contractEndDate", rec.ContractEndDate)
		}
		rec.PreferredStartDate = validation.FormatDate(validation.WorkingDaysFrom(e.now(), 14))
		return rec, models.StageInsuranceOptIn, nil
	}
	return rec, models.StageStartDate, nil
}

// handleInsurance records the opt-in decision. Any utterance producing a
// decision advances; ambiguous utterances leave insurance unset.
func (e *Engine) handleInsurance(rec models.ApplicationRecord, utterance string) (models.ApplicationRecord, models.ConversationStage, *models.ValidationError) {
	lower := strings.ToLower(utterance)

	if strings.Contains(lower, "no") || strings.Contains(lower, "decline") {
		rec.Insurance = &models.Insurance{OptedIn: false}
		return rec, models.StageConfirmation, nil
	}
	if strings.Contains(lower, "yes") {
		insuranceType := models.InsurancePersonalAccident
		if strings.Contains(lower, "home") {
			insuranceType = models.InsuranceHome
		} else if strings.Contains(lower, "travel") {
			insuranceType = models.InsuranceTravel
		}
		rec.Insurance = &models.Insurance{OptedIn: true, Type: insuranceType}
		return rec, models.StageConfirmation, nil
	}
	return rec, models.StageInsuranceOptIn, nil
}

func (e *Engine) handleConfirmation(rec models.ApplicationRecord, utterance string) (models.ApplicationRecord, models.ConversationStage, *models.ValidationError) {
	if IsAffirmative(utterance) {
		return rec, models.StageSignature, nil
	}
	// "no"/"change" stays put as well; the generator is asked to clarify.
	return rec, models.StageConfirmation, nil
}

// handleSignature accepts only the account holder's full name, compared
// trimmed and case-insensitively. The session layer finalizes the application
// on the transition to COMPLETED.
func (e *Engine) handleSignature(rec models.ApplicationRecord, utterance string) (models.ApplicationRecord, models.ConversationStage, *models.ValidationError) {
	expected := rec.AccountHolder.FullName
	signed := strings.TrimSpace(utterance)
	if expected != "" && strings.EqualFold(signed, expected) {
		rec.DigitalSignature = signed
		return rec, models.StageCompleted, nil
	}
	return rec, models.StageSignature, &models.ValidationError{
		Field:   "signature",
		Message: "Please type your full name exactly as shown: \"" + expected + "\"",
	}
}

// IsStageComplete reports whether every field the given stage requires has
// been set on the record.
func IsStageComplete(stage models.ConversationStage, rec *models.ApplicationRecord) bool {
	switch stage {
	case models.StageCustomerTypeIdentification:
		return rec.CustomerType != ""
	case models.StagePlanSelection:
		return rec.SelectedPlan != nil
	case models.StagePersonalDetails:
		return allStepsSet(rec, personalSteps)
	case models.StagePremiseDetails:
		return allStepsSet(rec, premiseSteps)
	case models.StageStartDate:
		return rec.PreferredStartDate != ""
	case models.StageInsuranceOptIn:
		return rec.Insurance != nil
	case models.StageSignature:
		return rec.DigitalSignature != ""
	default:
		return false
	}
}
