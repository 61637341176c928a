package genai

import (
	"errors"
	"testing"

	"github.com/openai/openai-go"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewClient()
	if !errors.Is(err, ErrMissingCredential) {
		t.Errorf("err = %v, want ErrMissingCredential", err)
	}
}

func TestNewClientWithExplicitKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	c, err := NewClient(WithAPIKey("sk-test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.model == "" {
		t.Error("expected a default model to be set")
	}
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"unauthorized", &openai.Error{StatusCode: 401, Message: "invalid api key"}, ErrMissingCredential},
		{"forbidden", &openai.Error{StatusCode: 403, Message: "forbidden"}, ErrMissingCredential},
		{"quota exhausted", &openai.Error{StatusCode: 429, Code: "insufficient_quota", Message: "quota"}, ErrQuotaExceeded},
		{"rate limited", &openai.Error{StatusCode: 429, Message: "slow down"}, ErrRateLimited},
	}
	for _, c := range cases {
		got := classifyError(c.in)
		if !errors.Is(got, c.want) {
			t.Errorf("%s: classifyError = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestClassifyErrorOtherWrapsOriginal(t *testing.T) {
	sentinels := []error{ErrMissingCredential, ErrQuotaExceeded, ErrRateLimited}

	server := &openai.Error{StatusCode: 500, Message: "internal"}
	got := classifyError(server)
	if !errors.Is(got, server) {
		t.Error("server errors must wrap the original error")
	}
	for _, s := range sentinels {
		if errors.Is(got, s) {
			t.Errorf("server error wrongly classified as %v", s)
		}
	}

	plain := errors.New("dial tcp: timeout")
	got = classifyError(plain)
	if !errors.Is(got, plain) {
		t.Error("transport errors must wrap the original error")
	}
	for _, s := range sentinels {
		if errors.Is(got, s) {
			t.Errorf("transport error wrongly classified as %v", s)
		}
	}
}
