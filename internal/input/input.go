// Package input validates user-entered transaction fields before they reach
// the store. The store trusts what it is given, so every view layer goes
// through ParseDraft.
package input

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"tracker/internal/core"
)

const MaxNameLength = 200

var (
	ErrEmptyName   = errors.New("empty name")
	ErrNameTooLong = fmt.Errorf("name too long (max %d characters)", MaxNameLength)
)

// Raw holds the fields as they arrive from a form, flag set or JSON body.
type Raw struct {
	Name     string `json:"name" validate:"required,max=200"`
	Amount   string `json:"amount" validate:"required"`
	Category string `json:"category" validate:"max=100"`
	Date     string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Type     string `json:"type" validate:"omitempty,oneof=income expense"`
}

// FieldError names the offending field and wraps the matching sentinel.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func engine() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ParseDraft trims and validates raw. An empty date means today and an
// empty type means income, matching the form defaults.
func ParseDraft(raw Raw, today core.Date) (core.Draft, error) {
	raw.Name = strings.TrimSpace(raw.Name)
	raw.Amount = strings.TrimSpace(raw.Amount)
	raw.Date = strings.TrimSpace(raw.Date)
	raw.Type = strings.ToLower(strings.TrimSpace(raw.Type))

	if err := engine().Struct(raw); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return core.Draft{}, fieldError(verrs[0])
		}
		return core.Draft{}, err
	}

	amount, err := core.ParseAmount(raw.Amount)
	if err != nil {
		return core.Draft{}, &FieldError{Field: "amount", Err: err}
	}

	date := today
	if raw.Date != "" {
		if date, err = core.ParseDate(raw.Date); err != nil {
			return core.Draft{}, &FieldError{Field: "date", Err: err}
		}
	}

	typ := core.Income
	if raw.Type != "" {
		if typ, err = core.ParseTransactionType(raw.Type); err != nil {
			return core.Draft{}, &FieldError{Field: "type", Err: err}
		}
	}

	return core.Draft{
		Name:     raw.Name,
		Amount:   amount,
		Category: raw.Category,
		Date:     date,
		Type:     typ,
	}, nil
}

func fieldError(fe validator.FieldError) *FieldError {
	field := strings.ToLower(fe.Field())
	switch fe.Field() {
	case "Name":
		if fe.Tag() == "max" {
			return &FieldError{Field: field, Err: ErrNameTooLong}
		}
		return &FieldError{Field: field, Err: ErrEmptyName}
	case "Amount":
		return &FieldError{Field: field, Err: core.ErrInvalidAmount}
	case "Date":
		return &FieldError{Field: field, Err: core.ErrInvalidDate}
	case "Type":
		return &FieldError{Field: field, Err: core.ErrInvalidType}
	default:
		return &FieldError{Field: field, Err: fmt.Errorf("failed %s validation", fe.Tag())}
	}
}
