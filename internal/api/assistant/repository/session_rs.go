package assistantRepository

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"AssistantGolang/internal/entity"
	contextPkg "AssistantGolang/pkg/context"
	redisPkg "AssistantGolang/pkg/redis"
	"AssistantGolang/pkg/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type sessionRepository struct {
	cache   redisPkg.IRedis
	utils   utils.IUtils
	log     *logrus.Logger
	timeout time.Duration
}

func sessionKey(userID string) string {
	return fmt.Sprintf("assistant:session:%s", userID)
}

func (r *sessionRepository) Timeout() time.Duration {
	return r.timeout
}

// GetOrCreate loads the live session for userID. An absent, expired, or
// undecodable value yields a fresh session; a cache read failure fails open
// the same way so a Redis hiccup never drops a user message.
func (r *sessionRepository) GetOrCreate(c context.Context, userID string) (entity.ConversationState, error) {
	requestID := contextPkg.GetRequestID(c)

	raw, err := r.cache.Get(c, sessionKey(userID))
	if err != nil {
		if !errors.Is(err, redisPkg.ErrNotFound) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"user_id":    userID,
				"error":      err.Error(),
			}).Warn("Session read failed, starting fresh session")
		}
		return r.newState(userID), nil
	}

	var state entity.ConversationState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Warn("Corrupt session document, starting fresh session")
		return r.newState(userID), nil
	}

	return state, nil
}

// Update stamps the freshness fields and writes the session with a native
// TTL. After every call ExpiresAt-LastMessageAt equals the session timeout.
// There is no locking; concurrent writers race and the last write wins.
func (r *sessionRepository) Update(c context.Context, state *entity.ConversationState) error {
	requestID := contextPkg.GetRequestID(c)

	now := time.Now().UTC()
	state.LastMessageAt = now
	state.ExpiresAt = now.Add(r.timeout)

	raw, err := json.Marshal(state)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    state.UserID,
			"error":      err.Error(),
		}).Error("Failed to marshal session state")
		return err
	}

	if err := r.cache.SetWithTTL(c, sessionKey(state.UserID), string(raw), r.timeout); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    state.UserID,
			"error":      err.Error(),
		}).Error("Failed to persist session state")
		return err
	}

	return nil
}

func (r *sessionRepository) Clear(c context.Context, userID string) error {
	return r.cache.Delete(c, sessionKey(userID))
}

func (r *sessionRepository) newState(userID string) entity.ConversationState {
	now := time.Now().UTC()

	threadID, err := r.utils.NewULIDFromTimestamp(now)
	if err != nil {
		threadID = fmt.Sprintf("thread-%d", now.UnixNano())
	}

	return entity.ConversationState{
		UserID:            userID,
		ThreadID:          threadID,
		CollectedEntities: []entity.ExtractedEntity{},
		MissingEntities:   []string{},
		Context:           map[string]interface{}{},
		TurnCount:         0,
		LastMessageAt:     now,
		ExpiresAt:         now.Add(r.timeout),
		Status:            entity.ConversationActive,
	}
}
