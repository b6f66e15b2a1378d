package profile

import "context"

type Profile struct {
	Name  string `json:"name"`
	ID    string `json:"id"`
	Email string `json:"email"`
}

type API interface {
	Get(ctx context.Context) (*Profile, error)
}
