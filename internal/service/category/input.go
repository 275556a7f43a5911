package category

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/behubadmin/internal/apperrors"
	"github.com/nkiryanov/behubadmin/internal/models"
)

const (
	DefaultSortOrder       = 1
	DefaultAverageDuration = 60
)

var hexColor = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

var validate = newValidator()

// Input is the category form as the admin submits it. Optional numbers are pointers: nil gets the default
type Input struct {
	Name        string `json:"name" validate:"required,max=100"`
	Icon        string `json:"icon" validate:"required"`
	Description string `json:"description" validate:"required,max=500"`
	Color       string `json:"color" validate:"omitempty,hexcolor_rgb"`

	SortOrder       *int `json:"sortOrder" validate:"omitempty,min=0"`
	AverageDuration *int `json:"averageDuration" validate:"omitempty,min=15,max=480"`

	PriceMin *decimal.Decimal `json:"priceMin" validate:"omitempty,min=0"`
	PriceMax *decimal.Decimal `json:"priceMax" validate:"omitempty,min=0"`

	IsActive                 *bool `json:"isActive"`
	RequiresLicense          bool  `json:"requiresLicense"`
	RequiresSpecialEquipment bool  `json:"requiresSpecialEquipment"`

	MetaTitle       string `json:"metaTitle" validate:"max=60"`
	MetaDescription string `json:"metaDescription" validate:"max=160"`
}

// Validate input and build API request with defaults applied
// Failure is *apperrors.ValidationError keyed by json field names
func (in Input) Request() (models.CategoryRequest, error) {
	if err := validate.Struct(in); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			return models.CategoryRequest{}, fmt.Errorf("can't validate category. Err: %w", err)
		}
		return models.CategoryRequest{}, validationError(errs)
	}

	req := models.CategoryRequest{
		Name:                     in.Name,
		Description:              in.Description,
		Icon:                     in.Icon,
		Color:                    in.Color,
		SortOrder:                valueOr(in.SortOrder, DefaultSortOrder),
		AverageDuration:          valueOr(in.AverageDuration, DefaultAverageDuration),
		IsActive:                 valueOr(in.IsActive, true),
		RequiresLicense:          in.RequiresLicense,
		RequiresSpecialEquipment: in.RequiresSpecialEquipment,
		MetaTitle:                in.MetaTitle,
		MetaDescription:          in.MetaDescription,
	}

	// Price range is sent only if any bound was given, the missing one is 0
	if in.PriceMin != nil || in.PriceMax != nil {
		req.AveragePriceRange = &models.PriceRange{
			Min: valueOr(in.PriceMin, decimal.Zero),
			Max: valueOr(in.PriceMax, decimal.Zero),
		}
	}

	return req, nil
}

// Input prefilled from existing category, for edit forms
func InputFrom(c models.ServiceCategory) Input {
	in := Input{
		Name:                     c.Name,
		Icon:                     c.Icon,
		Description:              c.Description,
		Color:                    c.Color,
		SortOrder:                &c.SortOrder,
		AverageDuration:          c.AverageDuration,
		IsActive:                 &c.IsActive,
		RequiresLicense:          c.RequiresLicense,
		RequiresSpecialEquipment: c.RequiresSpecialEquipment,
		MetaTitle:                c.MetaTitle,
		MetaDescription:          c.MetaDescription,
	}
	if c.AveragePriceRange != nil {
		in.PriceMin = &c.AveragePriceRange.Min
		in.PriceMax = &c.AveragePriceRange.Max
	}
	return in
}

func newValidator() *validator.Validate {
	v := validator.New()

	// Report json names, so messages can be matched to form fields
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Compare decimals as numbers with min/max tags
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("hexcolor_rgb", func(fl validator.FieldLevel) bool {
		return hexColor.MatchString(fl.Field().String())
	})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		in := sl.Current().Interface().(Input)
		if in.PriceMin != nil && in.PriceMax != nil && in.PriceMin.GreaterThan(*in.PriceMax) {
			sl.ReportError(in.PriceMin, "priceMin", "PriceMin", "price_range", "")
		}
	}, Input{})

	return v
}

func validationError(errs validator.ValidationErrors) *apperrors.ValidationError {
	verr := &apperrors.ValidationError{StatusCode: http.StatusBadRequest, Message: "Validation failed"}
	for _, fe := range errs {
		verr.Add(fe.Field(), message(fe))
	}
	return verr
}

// Human readable message, the same the admin sees in the dashboard form
func message(fe validator.FieldError) string {
	isText := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label(fe.Field()))
	case "max":
		if isText {
			return fmt.Sprintf("Max %s characters", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s", fe.Param())
	case "min":
		if isText {
			return fmt.Sprintf("Min %s characters", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "hexcolor_rgb":
		return "Color must be a hex code like #ffb320"
	case "price_range":
		return "Minimum price cannot be greater than maximum price"
	default:
		return "Invalid value"
	}
}

func label(field string) string {
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
