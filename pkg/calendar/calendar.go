package calendar

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"AssistantGolang/internal/entity"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendarAPI "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// ICalendar reads and writes the user's primary Google calendar. The
// assistant is single tenant, so one refresh token from the environment
// covers every request.
type ICalendar interface {
	ListUpcoming(ctx context.Context, maxResults int64) ([]entity.Event, error)
	CreateEvent(ctx context.Context, title string, startsAt, endsAt time.Time) (entity.Event, error)
}

type calendarClient struct {
	config       *oauth2.Config
	refreshToken string
}

func New() (ICalendar, error) {
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	refreshToken := os.Getenv("GOOGLE_CALENDAR_REFRESH_TOKEN")

	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, errors.New("google calendar credentials are not configured")
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{calendarAPI.CalendarEventsScope},
	}

	return &calendarClient{
		config:       config,
		refreshToken: refreshToken,
	}, nil
}

func (c *calendarClient) service(ctx context.Context) (*calendarAPI.Service, error) {
	tokenSource := c.config.TokenSource(ctx, &oauth2.Token{RefreshToken: c.refreshToken})

	svc, err := calendarAPI.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to build calendar service: %w", err)
	}

	return svc, nil
}

func (c *calendarClient) ListUpcoming(ctx context.Context, maxResults int64) ([]entity.Event, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	if maxResults <= 0 {
		maxResults = 10
	}

	res, err := svc.Events.List("primary").
		TimeMin(time.Now().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	events := make([]entity.Event, 0, len(res.Items))
	for _, item := range res.Items {
		events = append(events, entity.Event{
			ID:          item.Id,
			Title:       item.Summary,
			StartsAt:    parseEventTime(item.Start),
			EndsAt:      parseEventTime(item.End),
			Description: item.Description,
		})
	}

	return events, nil
}

func (c *calendarClient) CreateEvent(ctx context.Context, title string, startsAt, endsAt time.Time) (entity.Event, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return entity.Event{}, err
	}

	if endsAt.IsZero() || !endsAt.After(startsAt) {
		endsAt = startsAt.Add(time.Hour)
	}

	created, err := svc.Events.Insert("primary", &calendarAPI.Event{
		Summary: title,
		Start:   &calendarAPI.EventDateTime{DateTime: startsAt.Format(time.RFC3339)},
		End:     &calendarAPI.EventDateTime{DateTime: endsAt.Format(time.RFC3339)},
	}).Context(ctx).Do()
	if err != nil {
		return entity.Event{}, fmt.Errorf("failed to create calendar event: %w", err)
	}

	return entity.Event{
		ID:       created.Id,
		Title:    created.Summary,
		StartsAt: startsAt,
		EndsAt:   endsAt,
	}, nil
}

func parseEventTime(t *calendarAPI.EventDateTime) time.Time {
	if t == nil {
		return time.Time{}
	}

	if t.DateTime != "" {
		parsed, err := time.Parse(time.RFC3339, t.DateTime)
		if err == nil {
			return parsed
		}
	}

	if t.Date != "" {
		parsed, err := time.Parse("2006-01-02", t.Date)
		if err == nil {
			return parsed
		}
	}

	return time.Time{}
}
