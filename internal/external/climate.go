package external

import (
	"context"

	"agropredict/internal/model"
)

// Climate is a current-conditions snapshot for a commune
type Climate struct {
	Commune     string  `json:"commune"`
	Temperature float64 `json:"temperature"`
	Humidity    int     `json:"humidity"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

// ClimateProvider looks up current conditions
type ClimateProvider interface {
	Current(ctx context.Context, commune model.Commune) (*Climate, error)
}

// StubClimate returns fixed conditions for every commune. No weather
// service is queried.
type StubClimate struct{}

func (StubClimate) Current(ctx context.Context, commune model.Commune) (*Climate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Climate{
		Commune:     commune.Name,
		Temperature: 18.5,
		Humidity:    65,
		Description: "Partly cloudy",
		Icon:        "02d",
	}, nil
}
