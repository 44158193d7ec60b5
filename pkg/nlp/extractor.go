package nlp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"AssistantGolang/internal/entity"
)

// EntityExtractor pulls typed, positioned substrings out of raw message text.
// Three passes run in a fixed order: clock times, bare numbers, then one
// task/goal span. Later passes skip character ranges already claimed by an
// earlier pass, so a digit inside "5pm" is never also a bare number.
type EntityExtractor struct {
	timePattern   *regexp.Regexp
	numberPattern *regexp.Regexp
	leadIns       []string
}

var taskConnectors = map[string]bool{
	"at": true,
	"on": true,
	"in": true,
	"by": true,
}

func NewEntityExtractor() *EntityExtractor {
	return &EntityExtractor{
		// "5pm", "5 pm", "5:30pm", "17:30"
		timePattern:   regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}\s*(?:am|pm)?\b|\b\d{1,2}\s*(?:am|pm)\b`),
		numberPattern: regexp.MustCompile(`\d+(?:\.\d+)?`),
		leadIns: []string{
			"remind me to ",
			"reminder to ",
			"goal to ",
			"remember to ",
			"i need to ",
		},
	}
}

type span struct {
	start int
	end   int
}

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

func (e *EntityExtractor) Extract(text string) []entity.ExtractedEntity {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var entities []entity.ExtractedEntity
	var claimed []span

	// Pass 1: clock-time tokens.
	for _, loc := range e.timePattern.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		ent := entity.ExtractedEntity{
			Type:       EntityTime,
			Value:      strings.ToLower(strings.Join(strings.Fields(raw), "")),
			Original:   raw,
			StartIndex: loc[0],
			EndIndex:   loc[1],
		}
		if normalized, ok := normalizeClockTime(ent.Value); ok {
			ent.Metadata = map[string]string{"normalized": normalized}
		}
		entities = append(entities, ent)
		claimed = append(claimed, span{loc[0], loc[1]})
	}

	// Pass 2: bare numbers, excluding ranges the time pass already claimed.
	for _, loc := range e.numberPattern.FindAllStringIndex(text, -1) {
		candidate := span{loc[0], loc[1]}
		taken := false
		for _, c := range claimed {
			if candidate.overlaps(c) {
				taken = true
				break
			}
		}
		if taken {
			continue
		}
		raw := text[loc[0]:loc[1]]
		entities = append(entities, entity.ExtractedEntity{
			Type:       EntityNumber,
			Value:      raw,
			Original:   raw,
			StartIndex: loc[0],
			EndIndex:   loc[1],
		})
	}

	// Pass 3: one task/goal span after the first matching lead-in phrase,
	// right-bounded by the next time entity or end of string.
	if task, ok := e.extractTask(text, entities); ok {
		entities = append(entities, task)
	}

	return entities
}

func (e *EntityExtractor) extractTask(text string, found []entity.ExtractedEntity) (entity.ExtractedEntity, bool) {
	lower := strings.ToLower(text)

	start := -1
	for _, leadIn := range e.leadIns {
		if idx := strings.Index(lower, leadIn); idx >= 0 {
			start = idx + len(leadIn)
			break
		}
	}
	if start < 0 || start >= len(text) {
		return entity.ExtractedEntity{}, false
	}

	end := len(text)
	for _, ent := range found {
		if ent.Type == EntityTime && ent.StartIndex >= start && ent.StartIndex < end {
			end = ent.StartIndex
		}
	}
	if end <= start {
		return entity.ExtractedEntity{}, false
	}

	raw := text[start:end]
	value := cleanTaskValue(raw)
	if value == "" {
		return entity.ExtractedEntity{}, false
	}

	return entity.ExtractedEntity{
		Type:       EntityTask,
		Value:      value,
		Original:   raw,
		StartIndex: start,
		EndIndex:   end,
	}, true
}

// cleanTaskValue trims whitespace and a single trailing connector word left
// behind when the span was cut at a time entity ("call mom at " -> "call mom").
func cleanTaskValue(raw string) string {
	words := strings.Fields(raw)
	if len(words) == 0 {
		return ""
	}
	if taskConnectors[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// normalizeClockTime converts a matched token to 24h "HH:MM" form.
func normalizeClockTime(value string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(value))

	meridiem := ""
	if strings.HasSuffix(v, "am") {
		meridiem = "am"
		v = strings.TrimSpace(strings.TrimSuffix(v, "am"))
	} else if strings.HasSuffix(v, "pm") {
		meridiem = "pm"
		v = strings.TrimSpace(strings.TrimSuffix(v, "pm"))
	}

	hourPart := v
	minutePart := "0"
	if idx := strings.Index(v, ":"); idx >= 0 {
		hourPart = v[:idx]
		minutePart = v[idx+1:]
	}

	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return "", false
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil {
		return "", false
	}
	if hour > 23 || minute > 59 {
		return "", false
	}

	if meridiem == "pm" && hour < 12 {
		hour += 12
	}
	if meridiem == "am" && hour == 12 {
		hour = 0
	}

	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// ResolveClockTime turns a time entity into the next concrete occurrence
// after now, in now's location.
func ResolveClockTime(value string, now time.Time) (time.Time, bool) {
	normalized, ok := normalizeClockTime(value)
	if !ok {
		return time.Time{}, false
	}

	hour, _ := strconv.Atoi(normalized[:2])
	minute, _ := strconv.Atoi(normalized[3:])

	due := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !due.After(now) {
		due = due.Add(24 * time.Hour)
	}
	return due, true
}
