package car

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/zhouzirui/hypercar-hub/backend/internal/model/car"
)

var errNotAList = errors.New("request body must be a list of cars")

// draftPayload mirrors car.Car on the wire. Pointer fields let absent keys be
// told apart from zero values; a client-supplied id is accepted and ignored.
type draftPayload struct {
	ID          *string `json:"id,omitempty"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Brand       *string `json:"brand"`
	Price       *price  `json:"price"`
	ImageURL    *string `json:"imageUrl"`
}

// price accepts a JSON number or a string holding one.
type price float64

func (p *price) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*p = price(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return invalidFieldError{"price"}
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return invalidFieldError{"price"}
	}
	*p = price(n)
	return nil
}

type invalidFieldError struct {
	field string
}

func (e invalidFieldError) Error() string {
	return "invalid value for " + e.field
}

type missingFieldError struct {
	field string
}

func (e missingFieldError) Error() string {
	return e.field + " is required"
}

// toDraft checks that every field is present. Values are not validated.
func (p draftPayload) toDraft() (car.Draft, error) {
	switch {
	case p.Name == nil:
		return car.Draft{}, missingFieldError{"name"}
	case p.Description == nil:
		return car.Draft{}, missingFieldError{"description"}
	case p.Brand == nil:
		return car.Draft{}, missingFieldError{"brand"}
	case p.Price == nil:
		return car.Draft{}, missingFieldError{"price"}
	case p.ImageURL == nil:
		return car.Draft{}, missingFieldError{"imageUrl"}
	}

	return car.Draft{
		Name:        *p.Name,
		Description: *p.Description,
		Brand:       *p.Brand,
		Price:       float64(*p.Price),
		ImageURL:    *p.ImageURL,
	}, nil
}

func toDrafts(payloads []draftPayload) ([]car.Draft, error) {
	if payloads == nil {
		return nil, errNotAList
	}
	drafts := make([]car.Draft, 0, len(payloads))
	for i, p := range payloads {
		d, err := p.toDraft()
		if err != nil {
			return nil, fmt.Errorf("cars[%d]: %w", i, err)
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}
