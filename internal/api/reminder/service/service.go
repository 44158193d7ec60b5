package reminderService

import (
	"AssistantGolang/internal/api/reminder"
	reminderRepository "AssistantGolang/internal/api/reminder/repository"
	"AssistantGolang/internal/entity"
	"AssistantGolang/pkg/utils"
	"AssistantGolang/pkg/voicecall"
	"AssistantGolang/pkg/whatsapp"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IReminderService interface {
	CreateReminder(ctx context.Context, req reminder.CreateReminderRequest) (entity.Reminder, error)
	GetReminder(ctx context.Context, id string) (entity.Reminder, error)
	ListReminders(ctx context.Context, userID string, statuses []entity.ReminderStatus) ([]entity.Reminder, error)
	UpdateReminder(ctx context.Context, req reminder.UpdateReminderRequest) (entity.Reminder, error)
	SnoozeReminder(ctx context.Context, req reminder.SnoozeReminderRequest) error
	CancelReminder(ctx context.Context, id string, userID string) error
	CompleteReminder(ctx context.Context, id string, userID string) error

	DispatchDue(ctx context.Context) (sent int, failed int, err error)
	HandleVoiceCallback(ctx context.Context, req reminder.VoiceCallbackRequest) error
}

type reminderService struct {
	log                *logrus.Logger
	reminderRepository reminderRepository.Repository
	messageSender      whatsapp.IMessageSender
	voiceCaller        voicecall.IVoiceCaller
	utils              utils.IUtils
}

func NewReminderService(
	log *logrus.Logger,
	rr reminderRepository.Repository,
	messageSender whatsapp.IMessageSender,
	voiceCaller voicecall.IVoiceCaller,
	utils utils.IUtils,
) IReminderService {
	return &reminderService{
		log:                log,
		reminderRepository: rr,
		messageSender:      messageSender,
		voiceCaller:        voiceCaller,
		utils:              utils,
	}
}
