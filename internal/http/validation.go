package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"smartspend/internal/core"
)

// amountField accepts a JSON number or a string such as "12,50".
type amountField string

func (a *amountField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = amountField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a number or a numeric string")
	}
	*a = amountField(n.String())
	return nil
}

type createExpenseRequest struct {
	Amount   amountField `json:"amount" validate:"required"`
	Category string      `json:"category" validate:"required,max=50"`
	Date     string      `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Note     string      `json:"note" validate:"max=200"`
	// Description is accepted as an alias of note
	Description string `json:"description" validate:"max=200"`
}

type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{validate: v}
}

// Struct validates req and returns per-field messages.
func (v *requestValidator) Struct(req any) map[string]string {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = formatValidationError(fe)
	}
	return fields
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// toNewExpense converts a validated request. Field errors are keyed by JSON
// name.
func (req createExpenseRequest) toNewExpense() (amount core.Money, date core.Date, fields map[string]string) {
	fields = map[string]string{}
	amount, err := core.ParseAmount(string(req.Amount))
	if err != nil {
		fields["amount"] = "must be a positive number"
	}
	if req.Date != "" {
		date, err = core.ParseDate(req.Date)
		if err != nil {
			fields["date"] = "must be a date in YYYY-MM-DD format"
		}
	}
	if len(fields) == 0 {
		fields = nil
	}
	return amount, date, fields
}
