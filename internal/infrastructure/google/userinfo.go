package google

import (
	"context"

	oauth2api "google.golang.org/api/oauth2/v2"

	profile_domain "github.com/IoTMirror/GoogleWebService/internal/domain/profile"
)

type profileAPI struct {
	svc *oauth2api.Service
}

func NewProfileAPI(svc *oauth2api.Service) profile_domain.API {
	return &profileAPI{svc: svc}
}

func (a *profileAPI) Get(ctx context.Context) (*profile_domain.Profile, error) {
	info, err := a.svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, Classify(err)
	}
	return &profile_domain.Profile{Name: info.Name, ID: info.Id, Email: info.Email}, nil
}
