package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"googlemaps.github.io/maps"
)

var ErrDisabled = errors.New("address autocomplete is not configured")

const minInputRunes = 3

// Suggestion is one address prediction offered to the trip form.
type Suggestion struct {
	Description   string `json:"description"`
	PlaceID       string `json:"place_id"`
	MainText      string `json:"main_text"`
	SecondaryText string `json:"secondary_text"`
}

// PlacesService backs the address_autocomplete field type with Google Places.
type PlacesService struct {
	client   *maps.Client
	language string
	country  string
}

// NewPlacesService returns nil when apiKey is empty; a nil service reports
// ErrDisabled. Extra options (e.g. maps.WithBaseURL) are passed to the client.
func NewPlacesService(apiKey, language string, opts ...maps.ClientOption) (*PlacesService, error) {
	if apiKey == "" {
		return nil, nil
	}
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesService{client: client, language: language, country: "fr"}, nil
}

// Autocomplete returns address predictions restricted to France. Inputs
// shorter than three characters return no suggestions without calling the API.
func (s *PlacesService) Autocomplete(ctx context.Context, input, language string) ([]Suggestion, error) {
	if s == nil {
		return nil, ErrDisabled
	}
	input = strings.TrimSpace(input)
	if utf8.RuneCountInString(input) < minInputRunes {
		return []Suggestion{}, nil
	}
	if language == "" {
		language = s.language
	}

	resp, err := s.client.PlaceAutocomplete(ctx, &maps.PlaceAutocompleteRequest{
		Input:      input,
		Language:   language,
		Components: map[maps.Component][]string{maps.ComponentCountry: {s.country}},
	})
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	out := make([]Suggestion, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		out = append(out, Suggestion{
			Description:   p.Description,
			PlaceID:       p.PlaceID,
			MainText:      p.StructuredFormatting.MainText,
			SecondaryText: p.StructuredFormatting.SecondaryText,
		})
	}
	return out, nil
}
