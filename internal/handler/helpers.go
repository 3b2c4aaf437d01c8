package handler

import (
	"errors"
	"net/http"
	"reflect"

	"ecosort/internal/apierror"
	"ecosort/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Teach the validator to treat decimal.Decimal as a float so numeric
	// tags (gt=0, min=…) apply to the value instead of panicking on the
	// struct type.
	validate.RegisterCustomTypeFunc(decimalAsFloat, decimal.Decimal{})
}

func decimalAsFloat(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

// bindAndValidate decodes the JSON body into req and applies its validator
// tags. On failure the error response is already written and the handler
// must return without writing another.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			_ = c.Error(err)
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError translates service sentinel errors into HTTP statuses.
// Unknown errors are attached to the context so the ErrorHandler middleware
// logs them and answers with an opaque 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrOutOfStock),
		errors.Is(err, service.ErrUsernameTaken):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, service.ErrInsufficientPoints):
		c.JSON(http.StatusPaymentRequired, apierror.New(err.Error()))
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
	}
}
