package nlp

import (
	"regexp"
	"strings"
)

const commandMarker = "/"

// intentRule pairs a predicate with the intent it produces. Rules are
// evaluated in table order and the first match wins, so more specific
// phrasings must appear before catch-alls. Confidence is fixed per rule,
// not derived from match strength.
type intentRule struct {
	name       string
	match      func(text string) bool
	intent     string
	confidence float64
}

type commandSpec struct {
	name   string
	intent string
}

type processor struct {
	primary   []intentRule
	overrides []intentRule
	commands  map[string]commandSpec
	extractor *EntityExtractor
}

func NewProcessor() IProcessor {
	p := &processor{
		commands:  defaultCommands(),
		extractor: NewEntityExtractor(),
	}
	p.primary = primaryRules()
	p.overrides = overrideRules()
	return p
}

var (
	mathExprPattern = regexp.MustCompile(`\d+(?:\.\d+)?\s*[-+*/x×]\s*\d+(?:\.\d+)?`)
	verifyCodeText  = regexp.MustCompile(`\b\d{6}\b`)
)

func containsAny(text string, phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func primaryRules() []intentRule {
	return []intentRule{
		{
			name: "remind",
			match: func(t string) bool {
				return containsAny(t, "remind", "reminder", "wake me", "alarm")
			},
			intent:     IntentRemind,
			confidence: 0.9,
		},
		{
			name: "goal",
			match: func(t string) bool {
				return containsAny(t, "goal", "objective")
			},
			intent:     IntentGoal,
			confidence: 0.8,
		},
		{
			name: "remember",
			match: func(t string) bool {
				return containsAny(t, "remember that", "note that", "don't forget that", "keep in mind")
			},
			intent:     IntentRemember,
			confidence: 0.8,
		},
		{
			name: "recall",
			match: func(t string) bool {
				return containsAny(t, "what did i", "do you remember", "what do you know about", "do you know my")
			},
			intent:     IntentRecall,
			confidence: 0.7,
		},
		{
			name: "cancel",
			match: func(t string) bool {
				return containsAny(t, "cancel", "never mind", "forget it")
			},
			intent:     IntentCancel,
			confidence: 0.7,
		},
		{
			name: "status",
			match: func(t string) bool {
				return containsAny(t, "status report", "how are things", "what's pending")
			},
			intent:     IntentStatus,
			confidence: 0.7,
		},
		{
			name:       "chat",
			match:      func(string) bool { return true },
			intent:     IntentChat,
			confidence: 0.5,
		},
	}
}

// overrideRules is the second, independent chain for cross-cutting intents.
// It runs after the primary chain and replaces the primary result when any
// rule matches. Order mirrors the primary chain: first match wins.
func overrideRules() []intentRule {
	return []intentRule{
		{
			name: "vision",
			match: func(t string) bool {
				return containsAny(t, "what do you see", "look at my screen", "what's on my screen", "take a screenshot", "screenshot")
			},
			intent:     IntentVision,
			confidence: 0.9,
		},
		{
			name: "help",
			match: func(t string) bool {
				return t == "help" || containsAny(t, "what can you do", "how do i use you")
			},
			intent:     IntentHelp,
			confidence: 0.9,
		},
		{
			name: "calendar",
			match: func(t string) bool {
				return containsAny(t, "calendar", "meeting", "appointment", "my schedule")
			},
			intent:     IntentCalendar,
			confidence: 0.8,
		},
		{
			name: "self-modify-propose",
			match: func(t string) bool {
				return containsAny(t, "update your code", "change your code", "modify yourself", "improve yourself")
			},
			intent:     IntentSelfModify,
			confidence: 0.9,
		},
		{
			name: "self-modify-verify",
			match: func(t string) bool {
				if !verifyCodeText.MatchString(t) {
					return false
				}
				return containsAny(t, "confirm", "verify", "code") || len(strings.TrimSpace(t)) == 6
			},
			intent:     IntentSelfModifyVerify,
			confidence: 0.9,
		},
		{
			name: "run-script",
			match: func(t string) bool {
				return containsAny(t, "run a script", "run script", "execute script", "run this script")
			},
			intent:     IntentRunScript,
			confidence: 0.9,
		},
		{
			name: "web-search",
			match: func(t string) bool {
				return containsAny(t, "search for", "search the web", "google ", "look up ")
			},
			intent:     IntentWebSearch,
			confidence: 0.8,
		},
		{
			name: "calculate",
			match: func(t string) bool {
				if containsAny(t, "calculate", "compute") {
					return true
				}
				return containsAny(t, "what is", "what's", "how much is") && mathExprPattern.MatchString(t)
			},
			intent:     IntentCalculate,
			confidence: 0.8,
		},
	}
}

func defaultCommands() map[string]commandSpec {
	specs := []struct {
		spec    commandSpec
		aliases []string
	}{
		{commandSpec{"remind", IntentRemind}, []string{"/remind", "/r"}},
		{commandSpec{"calc", IntentCalculate}, []string{"/calc", "/c", "/calculate"}},
		{commandSpec{"goal", IntentGoal}, []string{"/goal", "/g"}},
		{commandSpec{"memory", IntentRemember}, []string{"/memory", "/m", "/remember"}},
		{commandSpec{"recall", IntentRecall}, []string{"/recall"}},
		{commandSpec{"search", IntentWebSearch}, []string{"/search", "/s"}},
		{commandSpec{"help", IntentHelp}, []string{"/help", "/h"}},
		{commandSpec{"status", IntentStatus}, []string{"/status"}},
	}

	commands := make(map[string]commandSpec)
	for _, s := range specs {
		for _, alias := range s.aliases {
			commands[alias] = s.spec
		}
	}
	return commands
}

// Process turns free text into a typed intent plus extracted entities.
// It is pure and deterministic: no store or network access, identical input
// always yields an identical result.
func (p *processor) Process(text string) ProcessingResult {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ProcessingResult{
			Text:       text,
			Intent:     IntentUnknown,
			Confidence: 0.0,
		}
	}

	if strings.HasPrefix(trimmed, commandMarker) {
		return p.processCommand(text, trimmed)
	}

	lower := strings.ToLower(trimmed)

	result := ProcessingResult{
		Text:     text,
		Entities: p.extractor.Extract(text),
	}

	for _, rule := range p.primary {
		if rule.match(lower) {
			result.Intent = rule.intent
			result.Confidence = rule.confidence
			break
		}
	}

	for _, rule := range p.overrides {
		if rule.match(lower) {
			result.Intent = rule.intent
			result.Confidence = rule.confidence
			break
		}
	}

	return result
}

func (p *processor) processCommand(original, trimmed string) ProcessingResult {
	fields := strings.Fields(trimmed)
	name := strings.ToLower(fields[0])
	remainder := strings.TrimSpace(strings.TrimPrefix(trimmed, fields[0]))

	spec, known := p.commands[name]
	if !known {
		// Unknown commands still return a result, never an error.
		return ProcessingResult{
			Text:       original,
			Intent:     IntentUnknown,
			Confidence: 1.0,
			IsCommand:  true,
			Command:    strings.TrimPrefix(name, commandMarker),
		}
	}

	return ProcessingResult{
		Text:       original,
		Intent:     spec.intent,
		Confidence: 1.0,
		IsCommand:  true,
		Command:    spec.name,
		Entities:   p.extractor.Extract(remainder),
	}
}
