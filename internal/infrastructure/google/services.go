package google

import (
	"context"
	"fmt"
	"net/http"

	calendarapi "google.golang.org/api/calendar/v3"
	gmailapi "google.golang.org/api/gmail/v1"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
	tasksapi "google.golang.org/api/tasks/v1"

	calendar_domain "github.com/IoTMirror/GoogleWebService/internal/domain/calendar"
	gmail_domain "github.com/IoTMirror/GoogleWebService/internal/domain/gmail"
	profile_domain "github.com/IoTMirror/GoogleWebService/internal/domain/profile"
	task_domain "github.com/IoTMirror/GoogleWebService/internal/domain/task"
)

// Services bundles the per-user Google APIs behind the domain contracts.
type Services struct {
	Tasks    task_domain.API
	Calendar calendar_domain.API
	Gmail    gmail_domain.GmailRepo
	Profile  profile_domain.API
}

// NewServices builds every API over one authorized HTTP client. Extra options are
// applied to each service; tests use them to redirect endpoints.
func NewServices(ctx context.Context, client *http.Client, opts ...option.ClientOption) (*Services, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)

	tasksSvc, err := tasksapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create tasks service: %w", err)
	}
	calendarSvc, err := calendarapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create calendar service: %w", err)
	}
	gmailSvc, err := gmailapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create gmail service: %w", err)
	}
	oauth2Svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create userinfo service: %w", err)
	}

	return &Services{
		Tasks:    NewTaskAPI(tasksSvc),
		Calendar: NewCalendarAPI(calendarSvc),
		Gmail:    NewGmailRepo(gmailSvc),
		Profile:  NewProfileAPI(oauth2Svc),
	}, nil
}
