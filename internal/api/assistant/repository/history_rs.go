package assistantRepository

import (
	"encoding/json"
	"strings"

	"AssistantGolang/internal/entity"
	contextPkg "AssistantGolang/pkg/context"
	redisPkg "AssistantGolang/pkg/redis"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const turnKeyPrefix = "assistant:turns:"

type historyRepository struct {
	cache redisPkg.IRedis
	log   *logrus.Logger
}

func turnKey(userID string) string {
	return turnKeyPrefix + userID
}

func (r *historyRepository) AddTurn(c context.Context, turn entity.ConversationTurn) error {
	requestID := contextPkg.GetRequestID(c)

	raw, err := json.Marshal(turn)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    turn.UserID,
			"error":      err.Error(),
		}).Error("Failed to marshal conversation turn")
		return err
	}

	return r.cache.PushToList(c, turnKey(turn.UserID), string(raw), turnHistoryCap)
}

// GetTurns returns up to limit turns, newest first. Entries that no longer
// decode are skipped rather than failing the whole read.
func (r *historyRepository) GetTurns(c context.Context, userID string, limit int64) ([]entity.ConversationTurn, error) {
	requestID := contextPkg.GetRequestID(c)

	if limit <= 0 || limit > turnHistoryCap {
		limit = turnHistoryCap
	}

	values, err := r.cache.GetList(c, turnKey(userID), limit)
	if err != nil {
		return nil, err
	}

	turns := make([]entity.ConversationTurn, 0, len(values))
	for _, v := range values {
		var turn entity.ConversationTurn
		if err := json.Unmarshal([]byte(v), &turn); err != nil {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"user_id":    userID,
			}).Warn("Skipping undecodable turn record")
			continue
		}
		turns = append(turns, turn)
	}

	return turns, nil
}

// ActiveUserIDs lists users that still have a turn ring in the cache, used
// by the transcript archival job.
func (r *historyRepository) ActiveUserIDs(c context.Context) ([]string, error) {
	keys, err := r.cache.ScanKeys(c, turnKeyPrefix+"*")
	if err != nil {
		return nil, err
	}

	userIDs := make([]string, 0, len(keys))
	for _, key := range keys {
		userIDs = append(userIDs, strings.TrimPrefix(key, turnKeyPrefix))
	}

	return userIDs, nil
}
