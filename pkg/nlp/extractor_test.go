package nlp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTimeAndTask(t *testing.T) {
	e := NewEntityExtractor()

	entities := e.Extract("remind me to call mom at 5pm")

	byType := map[string][]string{}
	for _, ent := range entities {
		byType[ent.Type] = append(byType[ent.Type], ent.Value)
	}

	assert.Equal(t, []string{"5pm"}, byType[EntityTime])
	assert.Equal(t, []string{"call mom"}, byType[EntityTask])
	assert.Empty(t, byType[EntityNumber], "digits of a time token must not leak into the number pass")
}

func TestExtractSpansNeverOverlap(t *testing.T) {
	e := NewEntityExtractor()

	inputs := []string{
		"remind me to call mom at 5pm",
		"wake me at 6:30am and again at 7am",
		"buy 3 tickets at 8pm for 12 people",
		"meet at 17:45, bring 2 chairs",
	}

	for _, in := range inputs {
		entities := e.Extract(in)
		for i, a := range entities {
			for j, b := range entities {
				if i >= j || a.Type == EntityTask || b.Type == EntityTask {
					continue
				}
				overlap := a.StartIndex < b.EndIndex && b.StartIndex < a.EndIndex
				assert.False(t, overlap, "input %q: %v overlaps %v", in, a, b)
			}
		}
	}
}

func TestExtractBareNumbers(t *testing.T) {
	e := NewEntityExtractor()

	entities := e.Extract("buy 3 tickets at 8pm for 12 people")

	var numbers, times []string
	for _, ent := range entities {
		switch ent.Type {
		case EntityNumber:
			numbers = append(numbers, ent.Value)
		case EntityTime:
			times = append(times, ent.Value)
		}
	}

	assert.Equal(t, []string{"3", "12"}, numbers)
	assert.Equal(t, []string{"8pm"}, times)
}

func TestExtractTaskBoundedByNextTime(t *testing.T) {
	e := NewEntityExtractor()

	entities := e.Extract("remind me to water the plants at 7:30pm tonight")

	var task string
	for _, ent := range entities {
		if ent.Type == EntityTask {
			task = ent.Value
		}
	}
	assert.Equal(t, "water the plants", task)
}

func TestExtractTaskWithoutTime(t *testing.T) {
	e := NewEntityExtractor()

	entities := e.Extract("remind me to stretch")

	require.Len(t, entities, 1)
	assert.Equal(t, EntityTask, entities[0].Type)
	assert.Equal(t, "stretch", entities[0].Value)
	assert.Equal(t, len("remind me to "), entities[0].StartIndex)
	assert.Equal(t, len("remind me to stretch"), entities[0].EndIndex)
}

func TestExtractFirstLeadInOnly(t *testing.T) {
	e := NewEntityExtractor()

	entities := e.Extract("remind me to remember to breathe")

	var tasks []string
	for _, ent := range entities {
		if ent.Type == EntityTask {
			tasks = append(tasks, ent.Value)
		}
	}
	require.Len(t, tasks, 1)
	assert.Equal(t, "remember to breathe", tasks[0])
}

func TestExtractEmpty(t *testing.T) {
	e := NewEntityExtractor()

	assert.Nil(t, e.Extract(""))
	assert.Nil(t, e.Extract("   "))
}

func TestNormalizeClockTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"5pm", "17:00", true},
		{"5:30pm", "17:30", true},
		{"12am", "00:00", true},
		{"12pm", "12:00", true},
		{"17:45", "17:45", true},
		{"9am", "09:00", true},
		{"25:00", "", false},
		{"5:75", "", false},
	}

	for _, tc := range tests {
		got, ok := normalizeClockTime(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, "input %q", tc.in)
		}
	}
}

func TestResolveClockTimeNextOccurrence(t *testing.T) {
	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)

	// 5pm is already past today, so it resolves to tomorrow.
	due, ok := ResolveClockTime("5pm", now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 11, 17, 0, 0, 0, time.UTC), due)

	// 8pm is still ahead today.
	due, ok = ResolveClockTime("8pm", now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC), due)
}
