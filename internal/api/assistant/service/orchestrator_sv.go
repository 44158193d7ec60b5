package assistantService

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"AssistantGolang/internal/api/assistant"
	"AssistantGolang/internal/api/memory"
	"AssistantGolang/internal/api/reminder"
	"AssistantGolang/internal/entity"
	"AssistantGolang/internal/tool"
	"AssistantGolang/pkg/log"
	"AssistantGolang/pkg/nlp"

	"github.com/google/uuid"
	"golang.org/x/net/context"
)

var (
	codePattern = regexp.MustCompile(`\b\d{6}\b`)
	mathPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?(?:\s*[-+*/x×]\s*\(?-?\d+(?:\.\d+)?\)?)+`)
)

// HandleMessage runs one full conversation turn: understand the text, route
// the intent, mutate session state, and come back with a reply. It never
// returns an empty reply for valid input; tool and provider failures degrade
// into apologetic text instead of errors.
func (s *assistantService) HandleMessage(c context.Context, userID, text string) (assistant.MessageResult, error) {
	if strings.TrimSpace(text) == "" {
		return assistant.MessageResult{}, assistant.ErrEmptyMessage
	}

	state, err := s.repo.Session.GetOrCreate(c, userID)
	if err != nil {
		return assistant.MessageResult{}, err
	}

	result := s.processor.Process(text)

	s.recordTurn(c, entity.ConversationTurn{
		UserID:    userID,
		ThreadID:  state.ThreadID,
		Direction: entity.TurnInbound,
		Text:      text,
		Intent:    result.Intent,
		Entities:  result.Entities,
	})

	reply := s.route(c, &state, result)

	state.TurnCount++
	state.LastIntent = result.Intent
	if err := s.repo.Session.Update(c, &state); err != nil {
		s.log.WithFields(log.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Warn("Failed to persist conversation state")
	}

	s.recordTurn(c, entity.ConversationTurn{
		UserID:    userID,
		ThreadID:  state.ThreadID,
		Direction: entity.TurnOutbound,
		Text:      reply,
		Intent:    result.Intent,
	})

	return assistant.MessageResult{
		Reply:      reply,
		Intent:     result.Intent,
		Confidence: result.Confidence,
		ThreadID:   state.ThreadID,
	}, nil
}

// route picks the handler for one processed message. A pending sensitive-tool
// approval takes priority over fresh intents so a bare code is not mistaken
// for chat.
func (s *assistantService) route(c context.Context, state *entity.ConversationState, result nlp.ProcessingResult) string {
	if state.PendingApproval != nil {
		if code := codePattern.FindString(result.Text); code != "" {
			return s.handleVerification(c, state, code)
		}
		if result.Intent == nlp.IntentCancel {
			return s.handleCancel(c, state)
		}
		return "I'm still waiting for the 6-digit code before I run that. Say cancel to drop it."
	}

	intent := result.Intent
	entities := result.Entities

	// A session parked waiting for a slot value treats low-signal replies
	// as answers to the open question, not as a new conversation.
	if state.Status == entity.ConversationWaiting && state.ActiveIntent != "" {
		if intent == state.ActiveIntent || intent == nlp.IntentChat || intent == nlp.IntentUnknown {
			intent = state.ActiveIntent
			entities = mergeEntities(state.CollectedEntities, entities)
		}
	}

	switch intent {
	case nlp.IntentRemind:
		return s.handleRemind(c, state, result.Text, entities)
	case nlp.IntentGoal:
		return s.handleGoal(c, state, result)
	case nlp.IntentRemember:
		return s.handleRemember(c, state, result)
	case nlp.IntentRecall:
		return s.handleRecall(c, state, result)
	case nlp.IntentCancel:
		return s.handleCancel(c, state)
	case nlp.IntentStatus:
		return s.handleStatus(c, state)
	case nlp.IntentHelp:
		return s.handleHelp()
	case nlp.IntentCalendar:
		return s.handleCalendar(c, state, result.Text, entities)
	case nlp.IntentCalculate:
		return s.handleCalculate(c, state, result)
	case nlp.IntentWebSearch:
		return s.handleWebSearch(c, state, result)
	case nlp.IntentVision:
		return s.handleVision(c, state, result.Text)
	case nlp.IntentRunScript:
		return s.proposeSensitiveTool(c, state, "run_script",
			map[string]string{"script": scriptFromText(result)})
	case nlp.IntentSelfModify:
		return s.proposeSensitiveTool(c, state, "self_modify",
			map[string]string{"proposal": result.Text})
	case nlp.IntentSelfModifyVerify:
		if code := codePattern.FindString(result.Text); code != "" {
			return s.handleVerification(c, state, code)
		}
		return "I couldn't find a code in that. Send the 6 digits I texted you."
	default:
		return s.handleChat(c, state, result.Text)
	}
}

func (s *assistantService) handleRemind(c context.Context, state *entity.ConversationState, text string, entities []entity.ExtractedEntity) string {
	task, hasTask := findEntity(entities, nlp.EntityTask)
	when, hasTime := findEntity(entities, nlp.EntityTime)

	if !hasTask || !hasTime {
		state.Status = entity.ConversationWaiting
		state.ActiveIntent = nlp.IntentRemind
		state.CollectedEntities = entities
		state.MissingEntities = nil
		if !hasTask {
			state.MissingEntities = append(state.MissingEntities, nlp.EntityTask)
		}
		if !hasTime {
			state.MissingEntities = append(state.MissingEntities, nlp.EntityTime)
		}
		if !hasTask {
			return "What should I remind you about?"
		}
		return "When should I remind you?"
	}

	dueAt, ok := nlp.ResolveClockTime(when.Value, time.Now())
	if !ok {
		return "I couldn't make sense of that time. Try something like 5pm or 17:30."
	}

	delivery := "sms"
	lower := strings.ToLower(text)
	if strings.Contains(lower, "call me") || strings.Contains(lower, "wake me") {
		delivery = "voice"
	}

	created, err := s.reminderService.CreateReminder(c, reminder.CreateReminderRequest{
		UserID:         state.UserID,
		Message:        task.Value,
		DueAt:          dueAt,
		DeliveryMethod: delivery,
	})
	if err != nil {
		s.log.WithFields(log.Fields{
			"user_id": state.UserID,
			"error":   err.Error(),
		}).Warn("Failed to create reminder from conversation")
		return "I couldn't save that reminder. Try again in a moment."
	}

	s.clearActiveFlow(state)

	return "Got it. I'll remind you to " + created.Message + " at " +
		created.DueAt.Format("3:04 PM on Monday") + "."
}

func (s *assistantService) handleGoal(c context.Context, state *entity.ConversationState, result nlp.ProcessingResult) string {
	description := goalDescription(result)
	if description == "" {
		return "What's the goal? Tell me in one sentence."
	}

	if _, err := s.memoryService.CreateGoal(c, state.UserID, description, nil); err != nil {
		s.log.WithFields(log.Fields{
			"user_id": state.UserID,
			"error":   err.Error(),
		}).Warn("Failed to create goal from conversation")
		return "I couldn't save that goal. Try again in a moment."
	}

	s.clearActiveFlow(state)
	return "Goal added: " + description + ". I'll keep it in mind."
}

func (s *assistantService) handleRemember(c context.Context, state *entity.ConversationState, result nlp.ProcessingResult) string {
	content := rememberContent(result)
	if content == "" {
		return "What should I remember?"
	}

	_, err := s.memoryService.CreateMemory(c, memory.CreateMemoryRequest{
		UserID:   state.UserID,
		Category: "personal",
		Source:   "conversation",
		Content:  content,
		Summary:  s.utils.TruncateText(content, 120),
	})
	if err != nil {
		s.log.WithFields(log.Fields{
			"user_id": state.UserID,
			"error":   err.Error(),
		}).Warn("Failed to store memory from conversation")
		return "I couldn't save that. Try again in a moment."
	}

	return "Noted. I'll remember that."
}

func (s *assistantService) handleRecall(c context.Context, state *entity.ConversationState, result nlp.ProcessingResult) string {
	memories, err := s.searchMemories(c, state.UserID, recallQuery(result))
	if err != nil {
		s.log.WithFields(log.Fields{
			"user_id": state.UserID,
			"error":   err.Error(),
		}).Warn("Memory recall query failed")
		return "I couldn't check my memory just now."
	}
	if len(memories) == 0 {
		return "I don't have anything on that yet."
	}

	lines := make([]string, 0, len(memories))
	for _, m := range memories {
		text := m.Summary
		if text == "" {
			text = s.utils.TruncateText(m.Content, 120)
		}
		lines = append(lines, "- "+text)
	}
	return "Here's what I know:\n" + strings.Join(lines, "\n")
}

// searchMemories tries the full query first, then falls back to individual
// words so "my parking spot" still finds a memory that only says "parking".
func (s *assistantService) searchMemories(c context.Context, userID, query string) ([]entity.Memory, error) {
	terms := []string{query}
	for _, word := range strings.Fields(query) {
		if len(word) >= 4 {
			terms = append(terms, word)
		}
	}

	for _, term := range terms {
		memories, err := s.memoryService.QueryMemories(c, memory.QueryMemoriesRequest{
			UserID:   userID,
			Search:   term,
			SortBy:   "importance",
			SortDesc: true,
			Limit:    5,
		})
		if err != nil {
			return nil, err
		}
		if len(memories) > 0 {
			return memories, nil
		}
	}
	return nil, nil
}

func (s *assistantService) handleCancel(c context.Context, state *entity.ConversationState) string {
	if state.PendingApproval != nil {
		if err := s.repo.Approval.ClearCode(c, state.UserID); err != nil {
			s.log.WithFields(log.Fields{
				"user_id": state.UserID,
				"error":   err.Error(),
			}).Warn("Failed to clear verification code on cancel")
		}
		state.PendingApproval = nil
		s.clearActiveFlow(state)
		return "Okay, I won't run that."
	}

	if state.ActiveIntent != "" {
		s.clearActiveFlow(state)
		return "Okay, cancelled."
	}

	return "Nothing to cancel right now."
}

func (s *assistantService) handleStatus(c context.Context, state *entity.ConversationState) string {
	var parts []string

	reminders, err := s.reminderService.ListReminders(c, state.UserID, nil)
	if err == nil {
		switch len(reminders) {
		case 0:
			parts = append(parts, "no pending reminders")
		case 1:
			parts = append(parts, "1 pending reminder")
		default:
			parts = append(parts, plural(len(reminders), "pending reminder"))
		}
	}

	goals, err := s.memoryService.ListActiveGoals(c, state.UserID)
	if err == nil {
		switch len(goals) {
		case 0:
			parts = append(parts, "no active goals")
		case 1:
			parts = append(parts, "1 active goal: "+goals[0].Description)
		default:
			parts = append(parts, plural(len(goals), "active goal"))
		}
	}

	if len(parts) == 0 {
		return "I couldn't pull your status just now."
	}
	return "You have " + strings.Join(parts, " and ") + "."
}

func (s *assistantService) handleHelp() string {
	return strings.Join([]string{
		"Here's what I can do:",
		"- Reminders: \"remind me to call mom at 5pm\" or /remind",
		"- Memory: \"remember that I park on level 3\" or /memory",
		"- Recall: \"what do you know about my parking spot\" or /recall",
		"- Goals: \"my goal is to run a marathon\" or /goal",
		"- Calendar: \"what's on my calendar\"",
		"- Math: \"what is 50 * 4\" or /calc",
		"- Web: \"search for golang generics\" or /search",
		"- Screen: \"what's on my screen\"",
		"- Status: /status",
	}, "\n")
}

func (s *assistantService) handleCalendar(c context.Context, state *entity.ConversationState, text string, entities []entity.ExtractedEntity) string {
	lower := strings.ToLower(text)
	wantsCreate := strings.Contains(lower, "schedule") ||
		strings.Contains(lower, "add") || strings.Contains(lower, "create") ||
		strings.Contains(lower, "book")

	if wantsCreate {
		task, hasTask := findEntity(entities, nlp.EntityTask)
		when, hasTime := findEntity(entities, nlp.EntityTime)
		if hasTask && hasTime {
			startsAt, ok := nlp.ResolveClockTime(when.Value, time.Now())
			if !ok {
				return "I couldn't make sense of that time. Try something like 3pm."
			}
			event, err := s.calendar.CreateEvent(c, task.Value, startsAt, startsAt.Add(time.Hour))
			if err != nil {
				s.log.WithFields(log.Fields{
					"user_id": state.UserID,
					"error":   err.Error(),
				}).Warn("Calendar event creation failed")
				return "I couldn't reach your calendar just now."
			}
			return "Scheduled " + event.Title + " at " + event.StartsAt.Format("3:04 PM on Monday") + "."
		}
	}

	events, err := s.calendar.ListUpcoming(c, 5)
	if err != nil {
		s.log.WithFields(log.Fields{
			"user_id": state.UserID,
			"error":   err.Error(),
		}).Warn("Calendar listing failed")
		return "I couldn't reach your calendar just now."
	}
	if len(events) == 0 {
		return "Your calendar is clear."
	}

	lines := make([]string, 0, len(events))
	for _, ev := range events {
		lines = append(lines, "- "+ev.Title+" at "+ev.StartsAt.Format("3:04 PM on Mon, Jan 2"))
	}
	return "Coming up:\n" + strings.Join(lines, "\n")
}

func (s *assistantService) handleCalculate(c context.Context, state *entity.ConversationState, result nlp.ProcessingResult) string {
	expression := ""
	if result.IsCommand {
		expression = commandRemainder(result.Text)
	} else {
		expression = mathPattern.FindString(result.Text)
	}
	expression = strings.NewReplacer("x", "*", "×", "*").Replace(expression)

	if strings.TrimSpace(expression) == "" {
		return "What should I calculate?"
	}

	return s.registry.Dispatch(c, "calculator",
		tool.CalculatorArgs{Expression: expression}, s.toolContext(state.UserID))
}

func (s *assistantService) handleWebSearch(c context.Context, state *entity.ConversationState, result nlp.ProcessingResult) string {
	query := searchQuery(result)
	if query == "" {
		return "What should I search for?"
	}

	return s.registry.Dispatch(c, "web_search",
		tool.SearchArgs{Query: query}, s.toolContext(state.UserID))
}

func (s *assistantService) handleVision(c context.Context, state *entity.ConversationState, text string) string {
	return s.registry.Dispatch(c, "screenshot",
		tool.ScreenshotArgs{Prompt: text}, s.toolContext(state.UserID))
}

func (s *assistantService) handleChat(c context.Context, state *entity.ConversationState, text string) string {
	items, err := s.contextService.BuildContext(c, state.UserID, nil)
	if err != nil {
		s.log.WithFields(log.Fields{
			"user_id": state.UserID,
			"error":   err.Error(),
		}).Warn("Context bundle build failed, replying without it")
		items = nil
	}

	reply, err := s.gemini.GenerateReply(c, text, s.contextService.FormatBundle(items))
	if err != nil {
		s.log.WithFields(log.Fields{
			"user_id": state.UserID,
			"error":   err.Error(),
		}).Warn("Conversational reply generation failed")
		return "I'm having trouble thinking right now. Try again in a bit."
	}
	return reply
}

func (s *assistantService) toolContext(userID string) tool.ToolContext {
	return tool.ToolContext{
		UserID:    userID,
		RequestID: uuid.NewString(),
	}
}

func (s *assistantService) clearActiveFlow(state *entity.ConversationState) {
	state.Status = entity.ConversationActive
	state.ActiveIntent = ""
	state.CollectedEntities = nil
	state.MissingEntities = nil
}

func (s *assistantService) recordTurn(c context.Context, turn entity.ConversationTurn) {
	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err == nil {
		turn.ID = id
	}
	turn.Timestamp = time.Now()

	if err := s.repo.History.AddTurn(c, turn); err != nil {
		s.log.WithFields(log.Fields{
			"user_id": turn.UserID,
			"error":   err.Error(),
		}).Warn("Failed to record conversation turn")
	}
}

func findEntity(entities []entity.ExtractedEntity, entityType string) (entity.ExtractedEntity, bool) {
	for _, e := range entities {
		if e.Type == entityType {
			return e, true
		}
	}
	return entity.ExtractedEntity{}, false
}

// mergeEntities overlays fresh extractions on what the session already
// collected. The newest value per type wins.
func mergeEntities(collected, fresh []entity.ExtractedEntity) []entity.ExtractedEntity {
	merged := make([]entity.ExtractedEntity, 0, len(collected)+len(fresh))
	seen := make(map[string]bool, len(fresh))

	for _, e := range fresh {
		merged = append(merged, e)
		seen[e.Type] = true
	}
	for _, e := range collected {
		if !seen[e.Type] {
			merged = append(merged, e)
		}
	}
	return merged
}

func commandRemainder(text string) string {
	trimmed := strings.TrimSpace(text)
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(trimmed, fields[0]))
}

func stripLeadIn(text string, leadIns ...string) string {
	lower := strings.ToLower(text)
	for _, leadIn := range leadIns {
		if idx := strings.Index(lower, leadIn); idx >= 0 {
			return strings.TrimSpace(text[idx+len(leadIn):])
		}
	}
	return ""
}

func goalDescription(result nlp.ProcessingResult) string {
	if result.IsCommand {
		return commandRemainder(result.Text)
	}
	if task, ok := findEntity(result.Entities, nlp.EntityTask); ok {
		return task.Value
	}
	if stripped := stripLeadIn(result.Text, "my goal is to ", "my goal is ", "goal to ", "add a goal to "); stripped != "" {
		return stripped
	}
	return ""
}

func rememberContent(result nlp.ProcessingResult) string {
	if result.IsCommand {
		return commandRemainder(result.Text)
	}
	if stripped := stripLeadIn(result.Text, "remember that ", "note that ", "don't forget that ", "keep in mind "); stripped != "" {
		return stripped
	}
	return strings.TrimSpace(result.Text)
}

func recallQuery(result nlp.ProcessingResult) string {
	if result.IsCommand {
		return commandRemainder(result.Text)
	}
	if stripped := stripLeadIn(result.Text, "what do you know about ", "do you remember ", "what did i say about ", "do you know my "); stripped != "" {
		return strings.TrimRight(stripped, "?")
	}
	return strings.TrimRight(strings.TrimSpace(result.Text), "?")
}

func searchQuery(result nlp.ProcessingResult) string {
	if result.IsCommand {
		return commandRemainder(result.Text)
	}
	if stripped := stripLeadIn(result.Text, "search the web for ", "search for ", "look up ", "google "); stripped != "" {
		return stripped
	}
	return ""
}

func scriptFromText(result nlp.ProcessingResult) string {
	if stripped := stripLeadIn(result.Text, "run this script:", "run script:", "run a script:", "execute script:"); stripped != "" {
		return stripped
	}
	if stripped := stripLeadIn(result.Text, "run this script", "run script", "run a script", "execute script"); stripped != "" {
		return stripped
	}
	return strings.TrimSpace(result.Text)
}

func plural(n int, noun string) string {
	return strconv.Itoa(n) + " " + noun + "s"
}
