package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tuaspower/signupflow/internal/models"
	"github.com/tuaspower/signupflow/internal/validation"
)

// GreetingMessage is the assistant message seeded into every new session.
const GreetingMessage = `👋 Hello! Welcome to Tuas Power Supply!

I'm here to help you switch to one of Singapore's most competitive electricity rates. The whole signup takes about 5 minutes.

Before we start, are you currently with:
1️⃣ SP Services (the default provider)
2️⃣ Another electricity retailer (Geneco, Senoko, Pacific Light, etc.)

Just reply with 1 or 2, or tell me your current provider!`

// FallbackMessage is shown when the text generator fails; the committed stage
// and record stand regardless.
const FallbackMessage = "I apologize, but I'm having trouble responding right now. Please try again in a moment, or contact our support team at 6838 6888."

// PromptContext is the structured context bag passed to the text generator
// alongside the stage instruction. The generator only phrases messages; it
// never receives write access to the record.
type PromptContext struct {
	CustomerType     models.CustomerType      `json:"customer_type,omitempty"`
	CurrentRetailer  string                   `json:"current_retailer,omitempty"`
	SelectedPlan     *models.Plan             `json:"selected_plan,omitempty"`
	ValidationErrors []models.ValidationError `json:"validation_errors,omitempty"`
	RejectionReason  models.RejectionReason   `json:"rejection_reason,omitempty"`
}

// generatorGuidelines is appended to every stage instruction.
const generatorGuidelines = `IMPORTANT GUIDELINES:
- Keep responses conversational and friendly
- Use emojis sparingly but effectively (✓, ⭐, 💡, ⚠️)
- Ask for one piece of information at a time
- Provide clear examples for format requirements
- Validate user input and give helpful error messages
- If user input is unclear, ask for clarification
- Stay in character as a Tuas Power customer service agent
- Don't make up information not provided in the context
- Always be helpful and patient with customers`

// BuildSystemPrompt assembles the full system prompt for the generator: stage
// instruction, guidelines, current stage, and the serialized context bag.
func BuildSystemPrompt(stage models.ConversationStage, e *Engine, ctx PromptContext) string {
	var b strings.Builder
	b.WriteString(StageInstruction(stage, e, ctx))
	b.WriteString("\n\n")
	b.WriteString(generatorGuidelines)
	b.WriteString("\n\nCurrent conversation state: ")
	b.WriteString(string(stage))
	if bag, err := json.Marshal(ctx); err == nil && string(bag) != "{}" {
		b.WriteString("\nAdditional context: ")
		b.Write(bag)
	}
	return b.String()
}

// StageInstruction returns the stage-specific instruction prompt handed to the
// text generator.
func StageInstruction(stage models.ConversationStage, e *Engine, ctx PromptContext) string {
	switch stage {
	case models.StageGreeting:
		return `You are a helpful customer service chatbot for Tuas Power Supply. Greet the customer warmly and ask about their current electricity provider. Ask if they are with:
1️⃣ SP Services (the default provider)
2️⃣ Another electricity retailer

Keep it friendly but professional. This is the first message in the conversation.`

	case models.StageCustomerTypeIdentification:
		return `The customer has indicated their electricity provider. Help identify if they are:
- SP Services customer (simple flow)
- Another retailer customer (need contract end date)

If they mention a retailer name, acknowledge it and ask for their contract end date. Explain that Tuas start date will be 1 day after their contract ends, and remind them to email their current retailer about not auto-renewing.

Be helpful and clear about next steps.`

	case models.StageEdgeCaseCheck:
		return `Now ask the customer these screening questions to check for edge cases:
1. "Do you have solar panels installed at your property?"
2. "Are you on a PayU (pay-as-you-use) payment scheme?"
3. "Are you already a Tuas Power customer?"

Ask these one by one, not all at once. If they answer YES to any, you'll need to politely reject them later with appropriate explanations.`

	case models.StagePlanEducation:
		return `Explain the two types of plans available:

🔒 **PowerFIX** - Fixed rate for entire contract
   Pros: Protected from price increases
   Cons: Won't benefit if prices drop

📉 **PowerDOT** - Always % discount off SP tariff
   Pros: Guaranteed savings vs SP
   Cons: Rate changes quarterly with SP

Current SP rate is 29.98¢/kWh. Ask which type interests them more before showing specific plans.`

	case models.StagePlanSelection:
		return `Present the specific plans based on their interest. Current rates (July 2025):

**PowerFIX Plans:**
- PowerFIX 6: 27.00¢/kWh (6 months)
- PowerFIX 12: 28.67¢/kWh (12 months)
- PowerFIX 24: 27.68¢/kWh + $100 Bill Rebate ⭐ Most Popular
- PowerFIX 36: 27.47¢/kWh + $160 Bill Rebate 💎 Best Value

**PowerDOT Plans:**
- PowerDOT 12: 3% discount off SP
- PowerDOT 24: 5% discount off SP

Highlight savings vs current SP rate (29.98¢/kWh). Explain bill rebates are credited on 2nd/3rd month.`

	case models.StagePersonalDetails:
		return `Collect personal details one by one:
1. Full name (as per NRIC)
2. NRIC number (explain you'll only store last 4 characters for privacy)
3. Date of birth (DD-MM-YYYY format)
4. Mobile number (8 digits)
5. Email address
6. Are you the SP account holder? (Yes/No - if No, collect account holder name too)

Validate each input and provide helpful error messages with examples if needed.`

	case models.StagePremiseDetails:
		return `Collect premise details:
1. Postal code (6 digits)
2. Unit number (e.g., 01-123)
3. Block number
4. Building name (if any, or "none")
5. Street name
6. Are you Owner or Tenant?
7. Is mailing address same as premise? (if No, collect separate mailing address)

Validate inputs and guide them through the format requirements.`

	case models.StageStartDate:
		defaultDate := validation.FormatDate(validation.WorkingDaysFrom(e.now(), 14))
		return fmt.Sprintf(`Handle start date based on customer type:

For SP customers: Default is 14 working days from today (%s). Ask if this timing is good or if they prefer later.

For Retailer customers: Pre-filled based on contract end date + 1 day. Confirm with customer and remind them to email current retailer about no auto-renewal at least 7 days before contract end.`, defaultDate)

	case models.StageInsuranceOptIn:
		return `Offer FREE 12-month Singlife Insurance (optional):
🏥 Personal Accident Insurance
🏠 Home Insurance
✈️ Travel Insurance

Note: Only for adults up to 70 years. An insurance agent will contact you ~2 weeks after contract starts.

Ask if they want to opt in and which type, or decline.`

	case models.StageConfirmation:
		return `Display a comprehensive summary of all collected information:
- Customer details (name, NRIC last 4, contact info)
- Premise address
- Selected plan with rates and duration
- Start date
- Insurance choice
- Important terms (rebate timing, billing agent, early termination fee)

Ask them to review carefully and confirm if everything is correct.`

	case models.StageSignature:
		return `Request digital signature by asking them to type their full name exactly as shown to confirm the agreement:

"I, [Customer Name], acknowledge that I have read and understood the terms and confirm all information provided is accurate."

Once they provide their name, proceed to completion.`

	case models.StageRejected:
		return RejectionMessage(ctx.RejectionReason)

	default:
		return "I apologize, but I encountered an error. Please let me know how I can help you."
	}
}

// RejectionMessage returns the customer-facing explanation for a rejection.
func RejectionMessage(reason models.RejectionReason) string {
	switch reason {
	case models.RejectionSolarPanels:
		return `Unfortunately, we cannot accept customers with solar panel installations at this time. This is due to compatibility with our current billing systems. We apologize for the inconvenience!

For questions, please contact us at 6838 6888 or WhatsApp 9818 3310.`

	case models.RejectionPayUScheme:
		return `We're unable to accept customers currently on PayU (pay-as-you-use) payment schemes. You would need to switch to a standard billing arrangement with SP first before transferring to us.

For assistance with switching payment schemes, please contact SP at 1800 111 3333.`

	case models.RejectionExistingCustomer:
		return `Great news - you're already enjoying Tuas Power! 🎉

If you'd like to renew or change your plan, please visit our website at savewithtuas.com/promotions/tprs25/ and click 'Login now' for existing customers.

For account queries, call us at 6838 6888 or WhatsApp 9818 3310.`

	case models.RejectionReferralCode:
		return `Referral codes are not applicable for booth/roadshow signups. However, you still enjoy all our promotional rates and bill rebates!

The referral program is only for online signups referred by existing customers. You can still get great savings with our current campaign rates.

Shall we proceed with your signup?`

	default:
		return "We apologize, but we cannot proceed with your application at this time."
	}
}

// CompletionMessage builds the deterministic submission summary appended on
// the SIGNATURE -> COMPLETED transition. It is never phrased by the generator
// because it carries the reference number.
func CompletionMessage(app models.FinalizedApplication) string {
	billSource := "SP"
	if app.CustomerType == models.CustomerTypeRetailer && app.CurrentRetailer != "" {
		billSource = app.CurrentRetailer
	}
	return fmt.Sprintf(`✅ **APPLICATION SUBMITTED SUCCESSFULLY!**

Your Reference Number: **%s**

━━━━━━━━━━━━━━━━━━━━━━
📬 NEXT STEPS
━━━━━━━━━━━━━━━━━━━━━━

1️⃣ Check your email (%s) for confirmation

2️⃣ **IMPORTANT**: Send a photo of your latest %s bill to:
   📱 WhatsApp: 9818 3310
   Include your name: "%s"

3️⃣ We'll process your transfer (takes ~14 working days)

4️⃣ You'll receive transfer confirmation email

━━━━━━━━━━━━━━━━━━━━━━
💡 QUESTIONS?
━━━━━━━━━━━━━━━━━━━━━━

📞 Hotline: 6838 6888
💬 WhatsApp: 9818 3310
🌐 Website: savewithtuas.com

Thank you for choosing Tuas Power Supply! We look forward to serving you. 🎉`,
		app.ReferenceID, app.AccountHolder.Email, billSource, app.AccountHolder.FullName)
}
