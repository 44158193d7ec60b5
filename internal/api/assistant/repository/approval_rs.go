package assistantRepository

import (
	"errors"
	"fmt"
	"time"

	bcryptPkg "AssistantGolang/pkg/bcrypt"
	contextPkg "AssistantGolang/pkg/context"
	redisPkg "AssistantGolang/pkg/redis"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type approvalRepository struct {
	cache redisPkg.IRedis
	crypt bcryptPkg.IBcrypt
	log   *logrus.Logger
	ttl   time.Duration
}

func approvalKey(userID string) string {
	return fmt.Sprintf("assistant:approval_code:%s", userID)
}

// StoreCode hashes the code before it touches the cache. The plain code
// exists only in the delivery message.
func (r *approvalRepository) StoreCode(c context.Context, userID string, code string) error {
	requestID := contextPkg.GetRequestID(c)

	hash, err := r.crypt.Hash(code)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("Failed to hash verification code")
		return err
	}

	return r.cache.SetWithTTL(c, approvalKey(userID), hash, r.ttl)
}

// VerifyCode reports whether code matches the stored hash. A missing or
// expired hash surfaces as redis.ErrNotFound for the service to map.
func (r *approvalRepository) VerifyCode(c context.Context, userID string, code string) (bool, error) {
	hash, err := r.cache.Get(c, approvalKey(userID))
	if err != nil {
		if errors.Is(err, redisPkg.ErrNotFound) {
			return false, redisPkg.ErrNotFound
		}
		return false, err
	}

	if err := r.crypt.Compare(hash, code); err != nil {
		return false, nil
	}

	return true, nil
}

func (r *approvalRepository) ClearCode(c context.Context, userID string) error {
	return r.cache.Delete(c, approvalKey(userID))
}
