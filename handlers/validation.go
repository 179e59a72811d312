package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"p9e.in/procurement/models"
	"p9e.in/procurement/pkg/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and runs its validate tags.
func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.BadRequest("request body is required")
		}
		return apperr.BadRequest("invalid request body: %v", err)
	}
	return validateStruct(dst)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.BadRequest("invalid request: %v", err)
	}
	return fieldError(verrs[0])
}

func fieldError(fe validator.FieldError) error {
	field := jsonPath(fe)
	switch fe.Tag() {
	case "required", "required_without":
		return apperr.Invalid(field, "%s is required", field)
	case "email":
		return apperr.Invalid(field, "%s must be a valid email address", field)
	case "min":
		if fe.Kind() == reflect.Slice {
			return apperr.Invalid(field, "at least %s %s required", fe.Param(), field)
		}
		return apperr.Invalid(field, "%s must be at least %s characters", field, fe.Param())
	case "len":
		return apperr.Invalid(field, "%s must be %s characters long", field, fe.Param())
	case "oneof":
		return apperr.Invalid(field, "%s must be one of %s", field, fe.Param())
	}
	return apperr.Invalid(field, "%s is invalid", field)
}

// jsonPath is the field path without the root type and without embedded
// structs, which JSON flattens.
func jsonPath(fe validator.FieldError) string {
	names := strings.Split(fe.Namespace(), ".")
	goNames := strings.Split(fe.StructNamespace(), ".")
	var out []string
	for i := 1; i < len(names); i++ {
		if i < len(goNames) && names[i] == goNames[i] {
			continue
		}
		out = append(out, names[i])
	}
	if len(out) == 0 {
		return fe.Field()
	}
	return strings.Join(out, ".")
}

func requireDate(field string, t models.JSONTime) error {
	if t.IsZero() {
		return apperr.Invalid(field, "%s is required", field)
	}
	return nil
}

// checkAfter requires later to fall on a day strictly after earlier.
func checkAfter(earlierField string, earlier models.JSONTime, laterField string, later models.JSONTime) error {
	if err := requireDate(earlierField, earlier); err != nil {
		return err
	}
	if err := requireDate(laterField, later); err != nil {
		return err
	}
	if !later.Day().After(earlier.Day()) {
		return apperr.Invalid(laterField, "%s must be after %s", laterField, earlierField)
	}
	return nil
}

// checkNotBefore requires later to fall on or after earlier's day.
func checkNotBefore(earlierField string, earlier models.JSONTime, laterField string, later models.JSONTime) error {
	if err := requireDate(earlierField, earlier); err != nil {
		return err
	}
	if err := requireDate(laterField, later); err != nil {
		return err
	}
	if later.Day().Before(earlier.Day()) {
		return apperr.Invalid(laterField, "%s cannot be before %s", laterField, earlierField)
	}
	return nil
}

func checkRFQDates(issued, due models.JSONTime, now time.Time) error {
	if err := checkAfter("dateIssued", issued, "dueDate", due); err != nil {
		return err
	}
	if issued.Day().After(models.NewJSONTime(now).Day()) {
		return apperr.Invalid("dateIssued", "dateIssued cannot be in the future")
	}
	return nil
}

func checkContractDates(effective, end models.JSONTime) error {
	return checkAfter("effectiveDate", effective, "endDate", end)
}

func checkPurchaseOrderDates(issued, expected models.JSONTime) error {
	return checkAfter("poIssuedDate", issued, "expectedDeliveryDate", expected)
}

func checkSalesOrderDates(created, planned models.JSONTime) error {
	return checkNotBefore("soCreatedDate", created, "plannedShipDate", planned)
}

func checkInvoiceDates(invoiceDate, due models.JSONTime) error {
	return checkNotBefore("invoiceDate", invoiceDate, "dueDate", due)
}

func requireItems(n int) error {
	if n == 0 {
		return apperr.Invalid("items", "at least one item is required")
	}
	return nil
}
