package assistantService

import (
	"AssistantGolang/internal/api/assistant"
	assistantRepository "AssistantGolang/internal/api/assistant/repository"
	memoryService "AssistantGolang/internal/api/memory/service"
	reminderService "AssistantGolang/internal/api/reminder/service"
	"AssistantGolang/internal/entity"
	"AssistantGolang/internal/tool"
	"AssistantGolang/pkg/calendar"
	"AssistantGolang/pkg/gemini"
	"AssistantGolang/pkg/nlp"
	"AssistantGolang/pkg/s3"
	"AssistantGolang/pkg/utils"
	"AssistantGolang/pkg/whatsapp"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IAssistantService interface {
	HandleMessage(ctx context.Context, userID, text string) (assistant.MessageResult, error)
	GetHistory(ctx context.Context, userID string, limit int64) ([]entity.ConversationTurn, error)
	ClearSession(ctx context.Context, userID string) error
	ArchiveTranscripts(ctx context.Context) (int, error)
}

// userDirectory resolves a user id to a full profile. The reminder
// repository's user client satisfies it.
type userDirectory interface {
	GetByID(c context.Context, id string) (entity.User, error)
}

type assistantService struct {
	log             *logrus.Logger
	repo            assistantRepository.Client
	processor       nlp.IProcessor
	registry        *tool.Registry
	memoryService   memoryService.IMemoryService
	contextService  memoryService.IContextService
	reminderService reminderService.IReminderService
	gemini          gemini.IGemini
	calendar        calendar.ICalendar
	messageSender   whatsapp.IMessageSender
	users           userDirectory
	storage         s3.ItfS3
	utils           utils.IUtils
}

func NewAssistantService(
	log *logrus.Logger,
	repo assistantRepository.Client,
	processor nlp.IProcessor,
	registry *tool.Registry,
	ms memoryService.IMemoryService,
	cs memoryService.IContextService,
	rs reminderService.IReminderService,
	gemini gemini.IGemini,
	cal calendar.ICalendar,
	messageSender whatsapp.IMessageSender,
	users userDirectory,
	storage s3.ItfS3,
	utils utils.IUtils,
) IAssistantService {
	return &assistantService{
		log:             log,
		repo:            repo,
		processor:       processor,
		registry:        registry,
		memoryService:   ms,
		contextService:  cs,
		reminderService: rs,
		gemini:          gemini,
		calendar:        cal,
		messageSender:   messageSender,
		users:           users,
		storage:         storage,
		utils:           utils,
	}
}
