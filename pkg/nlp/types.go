package nlp

import (
	"AssistantGolang/internal/entity"
)

const (
	IntentUnknown          = "UNKNOWN"
	IntentChat             = "CHAT"
	IntentRemind           = "REMIND"
	IntentGoal             = "GOAL"
	IntentRemember         = "REMEMBER"
	IntentRecall           = "RECALL"
	IntentCancel           = "CANCEL"
	IntentStatus           = "STATUS"
	IntentHelp             = "HELP"
	IntentCalendar         = "CALENDAR"
	IntentCalculate        = "CALCULATE"
	IntentWebSearch        = "WEB_SEARCH"
	IntentVision           = "VISION"
	IntentSelfModify       = "SELF_MODIFY_PROPOSE"
	IntentSelfModifyVerify = "SELF_MODIFY_VERIFY"
	IntentRunScript        = "RUN_SCRIPT"
)

const (
	EntityTime   = "time"
	EntityNumber = "number"
	EntityTask   = "task"
	EntityCode   = "code"
)

// ProcessingResult is produced fresh on every Process call and never persisted.
type ProcessingResult struct {
	Text       string                   `json:"text"`
	Intent     string                   `json:"intent"`
	Confidence float64                  `json:"confidence"`
	Entities   []entity.ExtractedEntity `json:"entities"`
	IsCommand  bool                     `json:"is_command"`
	Command    string                   `json:"command,omitempty"`
}

type IProcessor interface {
	Process(text string) ProcessingResult
}
