package assistantService

import (
	"bytes"
	"encoding/json"

	"AssistantGolang/internal/entity"
	"AssistantGolang/pkg/log"

	"golang.org/x/net/context"
)

func (s *assistantService) GetHistory(c context.Context, userID string, limit int64) ([]entity.ConversationTurn, error) {
	return s.repo.History.GetTurns(c, userID, limit)
}

func (s *assistantService) ClearSession(c context.Context, userID string) error {
	if err := s.repo.Approval.ClearCode(c, userID); err != nil {
		s.log.WithFields(log.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Warn("Failed to clear verification code with session")
	}

	return s.repo.Session.Clear(c, userID)
}

// ArchiveTranscripts snapshots every user's turn ring to object storage as
// JSON lines. A failed upload skips that user and moves on; the ring is
// never cleared, so nothing is lost on a bad run.
func (s *assistantService) ArchiveTranscripts(c context.Context) (int, error) {
	userIDs, err := s.repo.History.ActiveUserIDs(c)
	if err != nil {
		return 0, err
	}

	archived := 0
	for _, userID := range userIDs {
		turns, err := s.repo.History.GetTurns(c, userID, 0)
		if err != nil {
			s.log.WithFields(log.Fields{
				"user_id": userID,
				"error":   err.Error(),
			}).Warn("Skipping transcript archive, history read failed")
			continue
		}
		if len(turns) == 0 {
			continue
		}

		body, err := encodeTranscript(turns)
		if err != nil {
			s.log.WithFields(log.Fields{
				"user_id": userID,
				"error":   err.Error(),
			}).Warn("Skipping transcript archive, encoding failed")
			continue
		}

		location, err := s.storage.UploadTranscript(userID, body)
		if err != nil {
			s.log.WithFields(log.Fields{
				"user_id": userID,
				"error":   err.Error(),
			}).Warn("Transcript upload failed")
			continue
		}

		s.log.WithFields(log.Fields{
			"user_id":  userID,
			"location": location,
			"turns":    len(turns),
		}).Info("Archived conversation transcript")
		archived++
	}

	return archived, nil
}

func encodeTranscript(turns []entity.ConversationTurn) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, turn := range turns {
		if err := enc.Encode(turn); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
