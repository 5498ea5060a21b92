package http

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/piecework-api/internal/domain"
	"github.com/jhoicas/piecework-api/internal/domain/entity"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Nombres de campo según el JSON para que los errores coincidan con el request.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseBody decodifica y valida el cuerpo; devuelve un *domain.ValidationError con el
// primer campo inválido.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return errInvalidBody
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return domain.NewFieldError(fieldPath(fe), reason(fe))
		}
		return err
	}
	return nil
}

var errInvalidBody = errors.New("cuerpo inválido")

// fieldPath quita el nombre del struct raíz: "SubmitRequest.items[0].category_id" → "items[0].category_id".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es requerido"
	case "min":
		return "debe tener al menos " + fe.Param()
	case "max":
		return "excede el máximo de " + fe.Param()
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	case "datetime":
		return "debe tener formato YYYY-MM-DD"
	default:
		return "no es válido (" + fe.Tag() + ")"
	}
}

// queryDate lee un parámetro de fecha opcional.
func queryDate(c *fiber.Ctx, key string) (*time.Time, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return nil, nil
	}
	d, err := entity.ParseDate(s)
	if err != nil {
		return nil, domain.NewFieldError(key, "debe tener formato YYYY-MM-DD")
	}
	return &d, nil
}

// queryRange lee from/to; to anterior a from es inválido.
func queryRange(c *fiber.Ctx) (entity.DateRange, error) {
	from, err := queryDate(c, "from")
	if err != nil {
		return entity.DateRange{}, err
	}
	to, err := queryDate(c, "to")
	if err != nil {
		return entity.DateRange{}, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return entity.DateRange{}, domain.NewFieldError("to", "no puede ser anterior a from")
	}
	return entity.DateRange{From: from, To: to}, nil
}
