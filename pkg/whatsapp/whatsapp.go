package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/binary/proto"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"

	"AssistantGolang/database/postgres"
)

// ErrRateLimited is returned when the provider rejects a send for throttling
// reasons. Callers must be able to tell it apart from a hard failure.
var ErrRateLimited = errors.New("whatsapp: rate limited by provider")

type DeliveryStatus string

const (
	DeliveryAccepted DeliveryStatus = "accepted"
	DeliveryFailed   DeliveryStatus = "failed"
)

// DeliveryReceipt reports the outcome of one outbound message.
type DeliveryReceipt struct {
	Status     DeliveryStatus
	ProviderID string
}

type IMessageSender interface {
	SendMessage(ctx context.Context, phoneNumber, body string) (DeliveryReceipt, error)
	Disconnect() error
	IsConnected() bool
}

type messageSender struct {
	client *whatsmeow.Client
}

func New() (IMessageSender, error) {
	dsn := postgres.FormatDSN()

	dbLog := waLog.Stdout("Database", "INFO", true)
	container, err := sqlstore.New(context.Background(), "postgres", dsn, dbLog)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get device store: %w", err)
	}

	client := whatsmeow.NewClient(deviceStore, waLog.Stdout("Client", "INFO", true))

	connected := make(chan bool)
	client.AddEventHandler(func(evt interface{}) {
		if _, ok := evt.(*events.Connected); ok {
			connected <- true
		}
	})

	if client.Store.ID == nil {
		qrChan, _ := client.GetQRChannel(context.Background())
		if err := client.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect: %w", err)
		}

		go func() {
			for evt := range qrChan {
				if evt.Event == "code" {
					fmt.Println("QR Code:", evt.Code)
				}
			}
		}()
	} else {
		if err := client.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect: %w", err)
		}
	}

	select {
	case <-connected:
		fmt.Println("WhatsApp connected")
	case <-time.After(60 * time.Second):
		return nil, fmt.Errorf("connection timeout")
	}

	return &messageSender{
		client: client,
	}, nil
}

func (w *messageSender) SendMessage(ctx context.Context, phoneNumber, body string) (DeliveryReceipt, error) {
	jid := types.NewJID(strings.TrimPrefix(phoneNumber, "+"), types.DefaultUserServer)

	waMsg := &waProto.Message{
		Conversation: proto.String(body),
	}

	resp, err := w.client.SendMessage(ctx, jid, waMsg)
	if err != nil {
		if isRateLimitError(err) {
			return DeliveryReceipt{Status: DeliveryFailed}, ErrRateLimited
		}
		return DeliveryReceipt{Status: DeliveryFailed}, fmt.Errorf("failed to send message: %w", err)
	}

	return DeliveryReceipt{
		Status:     DeliveryAccepted,
		ProviderID: resp.ID,
	}, nil
}

func isRateLimitError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate") || strings.Contains(msg, "429") || strings.Contains(msg, "too many")
}

func (w *messageSender) Disconnect() error {
	w.client.Disconnect()
	return nil
}

func (w *messageSender) IsConnected() bool {
	return w.client.IsConnected()
}
