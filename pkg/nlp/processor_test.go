package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessIsDeterministic(t *testing.T) {
	p := NewProcessor()

	inputs := []string{
		"remind me to call mom at 5pm",
		"/calc 50 * 4",
		"what do you see on my screen",
		"",
		"   ",
		"/bogus something",
		"hello there",
	}

	for _, in := range inputs {
		first := p.Process(in)
		second := p.Process(in)
		assert.Equal(t, first, second, "input %q", in)
	}
}

func TestProcessRemindScenario(t *testing.T) {
	p := NewProcessor()

	result := p.Process("remind me to call mom at 5pm")

	assert.Equal(t, IntentRemind, result.Intent)
	assert.Equal(t, 0.9, result.Confidence)
	assert.False(t, result.IsCommand)

	var task, clock string
	for _, ent := range result.Entities {
		switch ent.Type {
		case EntityTask:
			task = ent.Value
		case EntityTime:
			clock = ent.Value
		}
	}
	assert.Equal(t, "call mom", task)
	assert.Equal(t, "5pm", clock)
}

func TestProcessCalcCommand(t *testing.T) {
	p := NewProcessor()

	result := p.Process("/calc 50 * 4")

	assert.True(t, result.IsCommand)
	assert.Equal(t, IntentCalculate, result.Intent)
	assert.Equal(t, "calc", result.Command)
	assert.Equal(t, 1.0, result.Confidence)

	var numbers []string
	for _, ent := range result.Entities {
		if ent.Type == EntityNumber {
			numbers = append(numbers, ent.Value)
		}
	}
	assert.Equal(t, []string{"50", "4"}, numbers)
}

func TestProcessUnknownCommand(t *testing.T) {
	p := NewProcessor()

	result := p.Process("/frobnicate now")

	assert.True(t, result.IsCommand)
	assert.Equal(t, IntentUnknown, result.Intent)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Equal(t, "frobnicate", result.Command)
}

func TestProcessCommandAliases(t *testing.T) {
	p := NewProcessor()

	tests := []struct {
		input   string
		intent  string
		command string
	}{
		{"/r call the dentist at 9am", IntentRemind, "remind"},
		{"/c 2 + 2", IntentCalculate, "calc"},
		{"/CALC 1 + 1", IntentCalculate, "calc"},
		{"/h", IntentHelp, "help"},
		{"/s golang generics", IntentWebSearch, "search"},
	}

	for _, tc := range tests {
		result := p.Process(tc.input)
		assert.Equal(t, tc.intent, result.Intent, "input %q", tc.input)
		assert.Equal(t, tc.command, result.Command, "input %q", tc.input)
		assert.True(t, result.IsCommand, "input %q", tc.input)
	}
}

func TestProcessEmptyText(t *testing.T) {
	p := NewProcessor()

	for _, in := range []string{"", "   ", "\n\t"} {
		result := p.Process(in)
		assert.Equal(t, IntentUnknown, result.Intent, "input %q", in)
		assert.Empty(t, result.Entities, "input %q", in)
		assert.False(t, result.IsCommand, "input %q", in)
	}
}

func TestPrimaryChainFirstMatchWins(t *testing.T) {
	p := NewProcessor()

	// "remind" appears before "goal" in the rule table, so a message with
	// both words resolves to REMIND.
	result := p.Process("remind me about my goal tomorrow")
	assert.Equal(t, IntentRemind, result.Intent)
}

func TestOverrideChainReplacesPrimary(t *testing.T) {
	p := NewProcessor()

	tests := []struct {
		input  string
		intent string
	}{
		{"take a screenshot and remind me what it says", IntentVision},
		{"help", IntentHelp},
		{"remind me about the meeting on my calendar", IntentCalendar},
		{"please update your code to handle timezones", IntentSelfModify},
		{"confirm 483921", IntentSelfModifyVerify},
		{"483921", IntentSelfModifyVerify},
		{"search for the best coffee nearby", IntentWebSearch},
		{"what is 50 * 4", IntentCalculate},
		{"calculate my share of the bill", IntentCalculate},
	}

	for _, tc := range tests {
		result := p.Process(tc.input)
		assert.Equal(t, tc.intent, result.Intent, "input %q", tc.input)
	}
}

func TestChatFallback(t *testing.T) {
	p := NewProcessor()

	result := p.Process("nice weather today")
	assert.Equal(t, IntentChat, result.Intent)
	assert.Equal(t, 0.5, result.Confidence)
}

func TestVerifyIntentRequiresSixDigits(t *testing.T) {
	p := NewProcessor()

	result := p.Process("confirm 12345")
	require.NotEqual(t, IntentSelfModifyVerify, result.Intent)

	result = p.Process("confirm 123456")
	assert.Equal(t, IntentSelfModifyVerify, result.Intent)
}
