package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/tuaspower/signupflow/internal/models"
)

func TestStageInstructionCoversAllActiveStages(t *testing.T) {
	e := NewWithClock(func() time.Time { return time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC) })
	for _, stage := range models.AllStages {
		if stage == models.StageCompleted {
			continue
		}
		got := StageInstruction(stage, e, PromptContext{})
		if strings.TrimSpace(got) == "" {
			t.Errorf("StageInstruction(%v) is empty", stage)
		}
	}
}

func TestStageInstructionStartDateUsesClock(t *testing.T) {
	e := NewWithClock(func() time.Time { return time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC) })
	got := StageInstruction(models.StageStartDate, e, PromptContext{})
	if !strings.Contains(got, "21 Jul 2025") {
		t.Errorf("start date instruction should carry the 14-working-day default, got: %s", got)
	}
}

func TestBuildSystemPromptIncludesStageAndContext(t *testing.T) {
	e := NewWithClock(time.Now)
	ctx := PromptContext{CustomerType: models.CustomerTypeSP}
	got := BuildSystemPrompt(models.StagePlanEducation, e, ctx)
	if !strings.Contains(got, string(models.StagePlanEducation)) {
		t.Error("system prompt must name the current stage")
	}
	if !strings.Contains(got, "IMPORTANT GUIDELINES") {
		t.Error("system prompt must carry the generator guidelines")
	}
	if !strings.Contains(got, `"customer_type":"SP"`) {
		t.Error("system prompt must serialize the context bag")
	}
}

func TestRejectionMessages(t *testing.T) {
	for _, reason := range models.AllRejectionReasons {
		msg := RejectionMessage(reason)
		if strings.TrimSpace(msg) == "" {
			t.Errorf("RejectionMessage(%v) is empty", reason)
		}
	}
	if !strings.Contains(RejectionMessage(models.RejectionPayUScheme), "1800 111 3333") {
		t.Error("PayU rejection should point at the SP hotline")
	}
	if !strings.Contains(RejectionMessage(models.RejectionExistingCustomer), "savewithtuas.com") {
		t.Error("existing customer rejection should point at the website")
	}
}

func TestCompletionMessage(t *testing.T) {
	app := models.FinalizedApplication{
		ReferenceID:     "TPS-2025-12345",
		CustomerType:    models.CustomerTypeRetailer,
		CurrentRetailer: "Geneco",
		AccountHolder:   models.AccountHolder{FullName: "John Tan", Email: "john@example.com"},
	}
	msg := CompletionMessage(app)
	for _, want := range []string{"TPS-2025-12345", "john@example.com", "John Tan", "Geneco"} {
		if !strings.Contains(msg, want) {
			t.Errorf("completion message missing %q", want)
		}
	}

	// SP customers are asked for their SP bill.
	app.CustomerType = models.CustomerTypeSP
	app.CurrentRetailer = ""
	if !strings.Contains(CompletionMessage(app), "SP bill") {
		t.Error("SP completion message should ask for the SP bill")
	}
}

func TestGreetingMessageIsFixed(t *testing.T) {
	if !strings.Contains(GreetingMessage, "1️⃣") || !strings.Contains(GreetingMessage, "2️⃣") {
		t.Error("greeting must present the two provider options")
	}
}
