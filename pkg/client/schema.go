package client

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Image is a file picked for upload.
type Image struct {
	Name string
	Data []byte
}

// FormValues are the editable fields of the product form.
type FormValues struct {
	Titulo    string `form:"titulo" validate:"min=3"`
	Valor     string `form:"valor" validate:"required,price"`
	Descricao string `form:"descricao" validate:"min=10,max=500"`
	Categoria string `form:"categoria" validate:"required"`
	Image     *Image `form:"image" validate:"required"`
}

// formMessages maps "field.rule" to the message shown under the field.
var formMessages = map[string]string{
	"titulo.min":         "O título é obrigatório.",
	"valor.required":     "O valor é obrigatório.",
	"valor.price":        "Informe um valor válido.",
	"descricao.min":      "A descrição deve ter pelo menos 10 caracteres.",
	"descricao.max":      "A descrição deve ter no máximo 500 caracteres.",
	"categoria.required": "Por favor, selecione uma categoria.",
	"image.required":     "A imagem é obrigatória.",
}

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
	})
	if err := v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		_, err := ParsePrice(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}
	return v
}

// LoginForm holds the sign-in fields.
type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// RegisterForm holds the sign-up fields. Telefone and ConfirmPassword are
// checked here and never sent.
type RegisterForm struct {
	Name            string `form:"name" validate:"min=3"`
	Telefone        string `form:"telefone" validate:"min=15"`
	Email           string `form:"email" validate:"email"`
	Password        string `form:"password" validate:"min=6"`
	ConfirmPassword string `form:"confirmPassword" validate:"eqfield=Password"`
}

var loginMessages = map[string]string{
	"email.required":    "O e-mail é obrigatório.",
	"email.email":       "Por favor, insira um e-mail válido.",
	"password.required": "A senha é obrigatória.",
}

var registerMessages = map[string]string{
	"name.min":                "O nome deve ter pelo menos 3 caracteres.",
	"telefone.min":            "Por favor, insira um telefone válido.",
	"email.email":             "Por favor, insira um e-mail válido.",
	"password.min":            "A senha deve ter no mínimo 6 caracteres.",
	"confirmPassword.eqfield": "As senhas não coincidem.",
}

// ValidateForm returns one message per invalid field; the map is empty when values are valid.
func ValidateForm(values FormValues) map[string]string {
	if values.Image != nil && len(values.Image.Data) == 0 {
		values.Image = nil
	}
	return validateFields(values, formMessages)
}

// ValidateLogin returns one message per invalid sign-in field.
func ValidateLogin(form LoginForm) map[string]string {
	return validateFields(form, loginMessages)
}

// ValidateRegister returns one message per invalid sign-up field.
func ValidateRegister(form RegisterForm) map[string]string {
	return validateFields(form, registerMessages)
}

func validateFields(values interface{}, messages map[string]string) map[string]string {
	out := map[string]string{}
	err := formValidator.Struct(values)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return out
	}
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		msg, ok := messages[field+"."+fe.Tag()]
		if !ok {
			msg = "Campo inválido."
		}
		out[field] = msg
	}
	return out
}
