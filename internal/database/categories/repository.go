// Package categories provides database operations for book shelving
// categories and their spine-label colors.
package categories

import (
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/entities"
)

var (
	// ErrMissingFields is returned when name or audience is empty.
	ErrMissingFields = errors.New("name and audience are required")

	// ErrInvalidAudience is returned for an unrecognised audience value.
	ErrInvalidAudience = errors.New("audience must be one of: children, young_adult, adult")

	// ErrDuplicateName is returned when the category name is already taken.
	ErrDuplicateName = errors.New("category name already exists")

	// ErrInvalidColor is returned when no color in the code is recognised.
	ErrInvalidColor = errors.New("color code contains no recognised colors")
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// colorNames lists the spine-label colors the desk client can render.
var colorNames = map[string]bool{
	"RED": true, "GREEN": true, "BLUE": true, "YELLOW": true, "ORANGE": true,
	"PURPLE": true, "PINK": true, "BROWN": true, "BLACK": true, "WHITE": true,
	"GRAY": true, "GREY": true, "LAVENDER": true, "TURQUOISE": true, "CYAN": true,
	"MAGENTA": true, "LIME": true, "MAROON": true, "NAVY": true, "OLIVE": true,
	"SILVER": true, "TEAL": true, "AQUA": true, "FUCHSIA": true, "GOLD": true,
	"INDIGO": true, "KHAKI": true, "CORAL": true, "SALMON": true, "VIOLET": true,
	"CRIMSON": true, "AZURE": true, "BEIGE": true, "TAN": true,
}

// Repository handles all shelving category database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new categories repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// NormalizeColorCode validates a color code and rewrites it into the
// canonical "COLOR / COLOR" form. Colors may arrive separated by commas,
// slashes or whitespace; each must be a known name or a #RRGGBB value.
// An empty input normalizes to empty.
func NormalizeColorCode(colorCode string) (string, error) {
	trimmed := strings.TrimSpace(colorCode)
	if trimmed == "" {
		return "", nil
	}

	var valid []string
	for _, part := range strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == ',' || r == '/' || r == ' ' || r == '\t'
	}) {
		color := strings.ToUpper(strings.TrimSpace(part))
		if color == "" {
			continue
		}
		if colorNames[color] || hexColorPattern.MatchString(color) {
			valid = append(valid, color)
		}
	}
	if len(valid) == 0 {
		return "", ErrInvalidColor
	}
	return strings.Join(valid, " / "), nil
}

// CreateCategory inserts a new shelving category. Names are unique and the
// color code is normalized before storage.
func (r *Repository) CreateCategory(category *entities.BookCategory) (*entities.BookCategory, error) {
	if category.Name == "" || category.Audience == "" {
		return nil, ErrMissingFields
	}
	if !entities.ValidAudiences[category.Audience] {
		return nil, ErrInvalidAudience
	}

	normalized, err := NormalizeColorCode(category.ColorCode)
	if err != nil {
		return nil, err
	}
	category.ColorCode = normalized

	if err := r.db.Create(category).Error; err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return category, nil
}

// GetCategoryByID retrieves a category by primary key.
func (r *Repository) GetCategoryByID(id uint) (*entities.BookCategory, error) {
	var category entities.BookCategory
	err := r.db.First(&category, id).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// GetCategoryByName retrieves a category by its exact name.
func (r *Repository) GetCategoryByName(name string) (*entities.BookCategory, error) {
	var category entities.BookCategory
	err := r.db.Where("name = ?", name).First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// GetAllCategories returns every shelving category ordered by name.
func (r *Repository) GetAllCategories() ([]entities.BookCategory, error) {
	var categories []entities.BookCategory
	err := r.db.Order("name ASC").Find(&categories).Error
	return categories, err
}

// GetCategoriesByAudience returns categories for one audience.
func (r *Repository) GetCategoriesByAudience(audience entities.Audience) ([]entities.BookCategory, error) {
	if !entities.ValidAudiences[audience] {
		return nil, ErrInvalidAudience
	}
	var categories []entities.BookCategory
	err := r.db.Where("audience = ?", audience).Order("name ASC").Find(&categories).Error
	return categories, err
}

// UpdateCategory applies the given field updates to a category. Audience
// and color code values are validated the same way CreateCategory does.
func (r *Repository) UpdateCategory(id uint, updates map[string]any) (*entities.BookCategory, error) {
	var category entities.BookCategory
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, err
	}

	if raw, ok := updates["audience"]; ok {
		audience, _ := raw.(entities.Audience)
		if !entities.ValidAudiences[audience] {
			return nil, ErrInvalidAudience
		}
	}
	if raw, ok := updates["color_code"]; ok {
		colorCode, _ := raw.(string)
		normalized, err := NormalizeColorCode(colorCode)
		if err != nil {
			return nil, err
		}
		updates["color_code"] = normalized
	}

	if err := r.db.Model(&category).Updates(updates).Error; err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return &category, nil
}

// DeleteCategory removes a shelving category.
func (r *Repository) DeleteCategory(id uint) error {
	var category entities.BookCategory
	if err := r.db.First(&category, id).Error; err != nil {
		return err
	}
	return r.db.Delete(&category).Error
}

// GetColorStats summarises spine-label color usage across the shelf list.
func (r *Repository) GetColorStats() (*ColorStats, error) {
	categories, err := r.GetAllCategories()
	if err != nil {
		return nil, err
	}

	stats := &ColorStats{
		TotalCategories: len(categories),
		ColorCounts:     make(map[string]int),
		ByAudience:      make(map[entities.Audience]AudienceColorUsage),
	}
	for _, category := range categories {
		colors := category.Colors()
		usage := stats.ByAudience[category.Audience]
		if len(colors) > 0 {
			stats.WithColors++
			usage.WithColors++
			for _, color := range colors {
				stats.ColorCounts[color]++
			}
		} else {
			stats.WithoutColors++
			usage.WithoutColors++
		}
		stats.ByAudience[category.Audience] = usage
	}
	return stats, nil
}

// ColorStats aggregates spine-label color usage.
type ColorStats struct {
	TotalCategories int                                      `json:"total_categories"`
	WithColors      int                                      `json:"with_colors"`
	WithoutColors   int                                      `json:"without_colors"`
	ColorCounts     map[string]int                           `json:"color_counts"`
	ByAudience      map[entities.Audience]AudienceColorUsage `json:"by_audience"`
}

// AudienceColorUsage counts colored and uncolored categories for one audience.
type AudienceColorUsage struct {
	WithColors    int `json:"with_colors"`
	WithoutColors int `json:"without_colors"`
}
