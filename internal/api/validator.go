package api

import (
	"io"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type structValidator struct {
	validate *validator.Validate
}

func NewValidator() echo.Validator {
	return &structValidator{validate: validator.New()}
}

func (v *structValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

type binder struct {
	echo.DefaultBinder
}

func NewBinder() echo.Binder {
	return &binder{}
}

type sonicSerializer struct{}

// NewSerializer swaps echo's JSON codec for sonic.
func NewSerializer() echo.JSONSerializer {
	return sonicSerializer{}
}

func (sonicSerializer) Serialize(c echo.Context, i any, indent string) error {
	enc := sonic.ConfigDefault.NewEncoder(c.Response())
	return enc.Encode(i)
}

func (sonicSerializer) Deserialize(c echo.Context, i any) error {
	err := sonic.ConfigDefault.NewDecoder(c.Request().Body).Decode(i)
	if err == io.EOF {
		return nil
	}
	return err
}
