package voicecall

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// IVoiceCaller places alarm calls through the external voice gateway.
// Success or failure is all this layer reports; call lifecycle updates
// arrive later through the provider's status callback.
type IVoiceCaller interface {
	TriggerAlarm(ctx context.Context, userID, phoneNumber, message string) bool
}

type voiceCaller struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *logrus.Logger
}

type alarmRequest struct {
	UserID      string `json:"user_id"`
	PhoneNumber string `json:"phone_number"`
	Message     string `json:"message"`
}

type alarmResponse struct {
	CallID string `json:"call_id"`
	Status string `json:"status"`
}

func New(log *logrus.Logger) IVoiceCaller {
	baseURL := os.Getenv("VOICE_GATEWAY_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8100"
	}

	return &voiceCaller{
		baseURL: baseURL,
		apiKey:  os.Getenv("VOICE_GATEWAY_API_KEY"),
		client:  &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
}

func (v *voiceCaller) TriggerAlarm(ctx context.Context, userID, phoneNumber, message string) bool {
	payload, err := json.Marshal(alarmRequest{
		UserID:      userID,
		PhoneNumber: phoneNumber,
		Message:     message,
	})
	if err != nil {
		v.log.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Error("Failed to marshal alarm request")
		return false
	}

	url := fmt.Sprintf("%s/v1/calls/alarm", v.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		v.log.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Error("Failed to build alarm request")
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	if v.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+v.apiKey)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		v.log.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Error("Voice gateway request failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		v.log.WithFields(logrus.Fields{
			"user_id": userID,
			"status":  resp.StatusCode,
		}).Error("Voice gateway rejected alarm call")
		return false
	}

	var result alarmResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		v.log.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Warn("Voice gateway returned unreadable response, treating as accepted")
		return true
	}

	v.log.WithFields(logrus.Fields{
		"user_id": userID,
		"call_id": result.CallID,
		"status":  result.Status,
	}).Info("Alarm call queued")

	return true
}
