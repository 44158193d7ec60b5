package assistantRepository

import (
	"time"

	"AssistantGolang/internal/entity"
	bcryptPkg "AssistantGolang/pkg/bcrypt"
	redisPkg "AssistantGolang/pkg/redis"
	"AssistantGolang/pkg/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	// DefaultSessionTimeout is how long an idle conversation survives
	// before the cache evicts it.
	DefaultSessionTimeout = 600 * time.Second

	// DefaultCodeTTL bounds the life of a sensitive-tool verification
	// code, independent of the session timeout.
	DefaultCodeTTL = 300 * time.Second

	// turnHistoryCap is the per-user turn ring size.
	turnHistoryCap = 50
)

func New(cache redisPkg.IRedis, crypt bcryptPkg.IBcrypt, utils utils.IUtils, log *logrus.Logger, sessionTimeout, codeTTL time.Duration) Client {
	if sessionTimeout <= 0 {
		sessionTimeout = DefaultSessionTimeout
	}
	if codeTTL <= 0 {
		codeTTL = DefaultCodeTTL
	}

	return Client{
		Session: &sessionRepository{
			cache:   cache,
			utils:   utils,
			log:     log,
			timeout: sessionTimeout,
		},
		History: &historyRepository{
			cache: cache,
			log:   log,
		},
		Approval: &approvalRepository{
			cache: cache,
			crypt: crypt,
			log:   log,
			ttl:   codeTTL,
		},
	}
}

type Client struct {
	Session interface {
		GetOrCreate(c context.Context, userID string) (entity.ConversationState, error)
		Update(c context.Context, state *entity.ConversationState) error
		Clear(c context.Context, userID string) error
		Timeout() time.Duration
	}

	History interface {
		AddTurn(c context.Context, turn entity.ConversationTurn) error
		GetTurns(c context.Context, userID string, limit int64) ([]entity.ConversationTurn, error)
		ActiveUserIDs(c context.Context) ([]string, error)
	}

	Approval interface {
		StoreCode(c context.Context, userID string, code string) error
		VerifyCode(c context.Context, userID string, code string) (bool, error)
		ClearCode(c context.Context, userID string) error
	}
}
