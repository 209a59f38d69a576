package models

import (
	"github.com/tidwall/gjson"
)

var validate = NewValidator()

// CreateProductRequest is the inbound body of POST /products.
type CreateProductRequest struct {
	Titulo    string   `json:"titulo" validate:"notblank"`
	Descricao string   `json:"descricao" validate:"notblank"`
	Preco     *float64 `json:"preco" validate:"required"`
	Categoria string   `json:"categoria" validate:"notblank"`
	Status    string   `json:"status,omitempty" validate:"omitempty,oneof=ativo inativo vendido"`
	ImagemURL string   `json:"imagemUrl,omitempty"`
}

// CreateProductCommand is a creation request that passed validation.
type CreateProductCommand struct {
	Titulo    string
	Descricao string
	Preco     float64
	Categoria string
	Status    ProductStatus
	ImagemURL string
}

// Product builds the entity persisted for this command.
func (c CreateProductCommand) Product() *Product {
	p := &Product{
		Titulo:    c.Titulo,
		Descricao: c.Descricao,
		Preco:     c.Preco,
		Categoria: c.Categoria,
		Status:    c.Status,
		ImagemURL: c.ImagemURL,
	}
	p.Normalize()
	return p
}

// ValidateCreateProduct checks a creation request and normalizes it into a command.
// Every violated field is reported in the returned *ValidationError.
func ValidateCreateProduct(req CreateProductRequest) (CreateProductCommand, error) {
	verr := &ValidationError{}
	if err := validateInto(req, verr); err != nil {
		return CreateProductCommand{}, err
	}
	if err := verr.OrNil(); err != nil {
		return CreateProductCommand{}, err
	}
	return toCommand(req), nil
}

// DecodeCreateProduct parses a raw JSON body and validates it. Type mismatches such as a
// textual preco are reported as field errors alongside the missing fields.
func DecodeCreateProduct(body []byte) (CreateProductCommand, error) {
	verr := &ValidationError{}
	if !gjson.ValidBytes(body) {
		verr.Add("body", "O corpo da requisição deve ser um JSON válido.")
		return CreateProductCommand{}, verr
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		verr.Add("body", "O corpo da requisição deve ser um objeto JSON.")
		return CreateProductCommand{}, verr
	}

	req := CreateProductRequest{
		Titulo:    stringField(root, "titulo", verr),
		Descricao: stringField(root, "descricao", verr),
		Categoria: stringField(root, "categoria", verr),
		Status:    stringField(root, "status", verr),
		ImagemURL: stringField(root, "imagemUrl", verr),
	}
	if r := root.Get("preco"); present(r) {
		if r.Type != gjson.Number {
			verr.Add("preco", "preco deve ser um número.")
		} else {
			v := r.Float()
			req.Preco = &v
		}
	}

	if err := validateInto(req, verr); err != nil {
		return CreateProductCommand{}, err
	}
	if err := verr.OrNil(); err != nil {
		return CreateProductCommand{}, err
	}
	return toCommand(req), nil
}

func validateInto(req CreateProductRequest, verr *ValidationError) error {
	return CollectValidationErrors(validate.Struct(req), verr)
}

func toCommand(req CreateProductRequest) CreateProductCommand {
	status := ProductStatus(req.Status)
	if status == "" {
		status = DefaultProductStatus
	}
	return CreateProductCommand{
		Titulo:    req.Titulo,
		Descricao: req.Descricao,
		Preco:     *req.Preco,
		Categoria: req.Categoria,
		Status:    status,
		ImagemURL: req.ImagemURL,
	}
}

func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}

func stringField(root gjson.Result, name string, verr *ValidationError) string {
	r := root.Get(name)
	if !present(r) {
		return ""
	}
	if r.Type != gjson.String {
		verr.Add(name, name+" deve ser um texto.")
		return ""
	}
	return r.Str
}
