package memoryService

import (
	"time"

	"AssistantGolang/internal/api/memory"
	memoryRepository "AssistantGolang/internal/api/memory/repository"
	"AssistantGolang/internal/entity"
	redisPkg "AssistantGolang/pkg/redis"
	"AssistantGolang/pkg/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IMemoryService interface {
	CreateMemory(ctx context.Context, req memory.CreateMemoryRequest) (entity.Memory, error)
	GetMemory(ctx context.Context, id string) (entity.Memory, error)
	UpdateMemory(ctx context.Context, req memory.UpdateMemoryRequest) (entity.Memory, error)
	ArchiveMemory(ctx context.Context, id string) error
	QueryMemories(ctx context.Context, req memory.QueryMemoriesRequest) ([]entity.Memory, error)
	CleanupExpired(ctx context.Context) (int64, error)
	LinkMemories(ctx context.Context, id, targetID string) error
	GetRelated(ctx context.Context, id string) ([]entity.Memory, error)
	ObservePattern(ctx context.Context, userID, kind, description string, confidence float64) error
	CreateGoal(ctx context.Context, userID, description string, targetDate *time.Time) (entity.Goal, error)
	ListActiveGoals(ctx context.Context, userID string) ([]entity.Goal, error)
	UpdateGoalStatus(ctx context.Context, id string, status entity.GoalStatus) error
}

type IContextService interface {
	BuildContext(ctx context.Context, userID string, entities []entity.ExtractedEntity) ([]entity.ContextItem, error)
	FormatBundle(items []entity.ContextItem) []string
}

type memoryService struct {
	log              *logrus.Logger
	memoryRepository memoryRepository.Repository
	utils            utils.IUtils
}

func NewMemoryService(log *logrus.Logger, mr memoryRepository.Repository, utils utils.IUtils) IMemoryService {
	return &memoryService{
		log:              log,
		memoryRepository: mr,
		utils:            utils,
	}
}

type contextService struct {
	log              *logrus.Logger
	memoryRepository memoryRepository.Repository
	cache            redisPkg.IRedis
	policy           RankingPolicy
}

func NewContextService(log *logrus.Logger, mr memoryRepository.Repository, cache redisPkg.IRedis, policy RankingPolicy) IContextService {
	if policy.ImportanceWeight == 0 && policy.RecencyWeight == 0 && policy.TagOverlapWeight == 0 {
		policy = DefaultRankingPolicy()
	}
	return &contextService{
		log:              log,
		memoryRepository: mr,
		cache:            cache,
		policy:           policy,
	}
}
