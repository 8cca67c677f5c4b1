package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/diagnosis/luxstay/internal/apiclient"
	"github.com/diagnosis/luxstay/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and validates it. An empty body leaves
// dst at its zero value before validation.
func decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return domain.NewValidationError("body", "invalid json")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return domain.NewValidationError(fe.Field(), "failed %s validation", fe.Tag())
		}
		return err
	}
	return nil
}

func idParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, domain.NewValidationError(name, "must be a uuid")
	}
	return id, nil
}

func listOptions(r *http.Request) (apiclient.ListOptions, error) {
	var opts apiclient.ListOptions
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return opts, domain.NewValidationError("page", "must be a positive integer")
		}
		opts.Page = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return opts, domain.NewValidationError("page_size", "must be a positive integer")
		}
		if n > 100 {
			n = 100
		}
		opts.PageSize = n
	}
	if v := q.Get("status"); v != "" {
		st, ok := domain.ParseBookingStatus(v)
		if !ok {
			return opts, domain.NewValidationError("status", "allowed: pending, confirmed, canceled")
		}
		opts.Status = st
	}
	return opts, nil
}
