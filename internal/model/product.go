package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Column limits of the products table.
const (
	MaxNameLength      = 200
	MaxImagePathLength = 500
	MaxPriceLength     = 100
	MaxCategoryLength  = 100
	MaxRarityLength    = 50
	MaxTags            = 5
)

// ErrInvalidProduct is returned when a product is missing a required field.
var ErrInvalidProduct = errors.New("invalid product")

// Product represents a magical item listed in the emporium.
type Product struct {
	ID          int64
	Name        string
	Description string
	ImagePath   string
	Price       string
	Category    string
	Tags        Tags
	Rarity      string
	CreatedAt   time.Time
}

// InitMeta resets the store-owned fields before insert. ID is assigned by the
// database; CreatedAt is stamped here.
func (p *Product) InitMeta(now time.Time) {
	p.ID = 0
	p.CreatedAt = now.UTC()
	if p.Tags == nil {
		p.Tags = Tags{}
	}
}

// Validate checks that every required field is present.
func (p *Product) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"name", p.Name},
		{"description", p.Description},
		{"image_path", p.ImagePath},
		{"price", p.Price},
		{"category", p.Category},
		{"rarity", p.Rarity},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidProduct, r.field)
		}
	}
	if len(p.ImagePath) > MaxImagePathLength {
		return fmt.Errorf("%w: image_path longer than %d", ErrInvalidProduct, MaxImagePathLength)
	}
	return nil
}

// Tags is an ordered list of short labels stored as a JSON array.
type Tags []string

// Value implements driver.Valuer.
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		t = Tags{}
	}
	raw, err := json.Marshal([]string(t))
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (t *Tags) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported tags column type %T", src)
	}

	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return fmt.Errorf("failed to decode tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	*t = tags
	return nil
}
