package client

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// FormState is the submission state of a ProductForm.
type FormState int

const (
	FormIdle FormState = iota
	FormSubmitting
	FormSucceeded
	FormFailed
)

func (s FormState) String() string {
	switch s {
	case FormIdle:
		return "idle"
	case FormSubmitting:
		return "submitting"
	case FormSucceeded:
		return "succeeded"
	case FormFailed:
		return "failed"
	}
	return "unknown"
}

// RouteProducts is where the form navigates after a successful creation.
const RouteProducts = "/products"

// Notification texts.
const (
	MessageImageRequired = "Por favor, selecione uma imagem para o produto."
	MessageUploadFailed  = "Falha ao enviar a imagem. Tente novamente."
	MessageCreateFailed  = "Falha ao cadastrar o produto. Tente novamente."
	MessageCreated       = "Produto cadastrado com sucesso!"
)

// ErrSubmitInProgress rejects a Submit while another one is running.
var ErrSubmitInProgress = errors.New("client: submission already in progress")

// Notifier shows transient messages to the user.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Navigator moves the user to another screen.
type Navigator interface {
	Navigate(route string)
}

// ProductAPI is the part of the API the form calls. *Client implements it.
type ProductAPI interface {
	UploadImage(ctx context.Context, creds Credentials, fileName string, data []byte) (string, error)
	CreateProduct(ctx context.Context, creds Credentials, payload ProductPayload) (*Product, error)
	DeleteImage(ctx context.Context, creds Credentials, imageURL string) error
}

// ProductForm holds the product form's values and runs its two-step submission:
// upload the image, then create the product pointing at it.
type ProductForm struct {
	api       ProductAPI
	creds     func() Credentials
	bus       *EventBus
	notifier  Notifier
	navigator Navigator
	logger    *log.Logger

	mu       sync.Mutex
	values   FormValues
	errors   map[string]string
	state    FormState
	detached bool
}

// NewProductForm creates an empty form. bus, notifier and navigator may be nil.
func NewProductForm(api ProductAPI, creds func() Credentials, bus *EventBus, notifier Notifier, navigator Navigator) *ProductForm {
	return &ProductForm{
		api:       api,
		creds:     creds,
		bus:       bus,
		notifier:  notifier,
		navigator: navigator,
		logger:    log.Default(),
		errors:    map[string]string{},
	}
}

// SetLogger replaces the form's logger.
func (f *ProductForm) SetLogger(l *log.Logger) { f.logger = l }

func (f *ProductForm) SetTitulo(v string) { f.edit(func(fv *FormValues) { fv.Titulo = v }) }

// SetValor takes the currency text as typed, e.g. "R$ 1.234,56".
func (f *ProductForm) SetValor(v string) { f.edit(func(fv *FormValues) { fv.Valor = v }) }

func (f *ProductForm) SetDescricao(v string) { f.edit(func(fv *FormValues) { fv.Descricao = v }) }

func (f *ProductForm) SetCategoria(v string) { f.edit(func(fv *FormValues) { fv.Categoria = v }) }

// SetImage picks the image to upload and clears the image error.
func (f *ProductForm) SetImage(name string, data []byte) {
	f.edit(func(fv *FormValues) {
		fv.Image = &Image{Name: name, Data: data}
		delete(f.errors, "image")
	})
}

// edit applies change; a failed or finished submission returns to idle.
func (f *ProductForm) edit(change func(*FormValues)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	change(&f.values)
	if f.state == FormFailed || f.state == FormSucceeded {
		f.state = FormIdle
	}
}

// Values returns the current field values.
func (f *ProductForm) Values() FormValues {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// Errors returns the field messages from the last Submit.
func (f *ProductForm) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

func (f *ProductForm) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Detach marks the form's screen as gone. Submissions still finish,
// but no longer notify or navigate.
func (f *ProductForm) Detach() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detached = true
}

// Submit validates the form, uploads the image and creates the product.
// Invalid values make no network call and return *ValidationError.
func (f *ProductForm) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.state == FormSubmitting {
		f.mu.Unlock()
		return ErrSubmitInProgress
	}
	values := f.values
	errs := ValidateForm(values)
	f.errors = errs
	if len(errs) > 0 {
		f.state = FormIdle
		f.mu.Unlock()
		if _, missing := errs["image"]; missing {
			f.notifyError(MessageImageRequired)
		}
		return &ValidationError{Message: "invalid form", Fields: errs}
	}
	f.state = FormSubmitting
	f.mu.Unlock()

	creds := f.creds()

	imageURL, err := f.api.UploadImage(ctx, creds, values.Image.Name, values.Image.Data)
	if err != nil {
		f.logger.Printf("client: image upload failed: %v", err)
		f.fail(MessageUploadFailed, err)
		return err
	}

	price, err := ParsePrice(values.Valor)
	if err != nil {
		f.compensate(ctx, creds, imageURL)
		f.fail(MessageCreateFailed, err)
		return err
	}

	_, err = f.api.CreateProduct(ctx, creds, ProductPayload{
		Titulo:    values.Titulo,
		Descricao: values.Descricao,
		Preco:     price.InexactFloat64(),
		Categoria: values.Categoria,
		Status:    "ativo",
		ImagemURL: imageURL,
	})
	if err != nil {
		f.logger.Printf("client: product creation failed: %v", err)
		f.compensate(ctx, creds, imageURL)
		f.fail(MessageCreateFailed, err)
		return err
	}

	f.succeed()
	return nil
}

// compensate removes the image uploaded for a product that was never created.
// A failure leaves an orphan image, which is only logged.
func (f *ProductForm) compensate(ctx context.Context, creds Credentials, imageURL string) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := f.api.DeleteImage(cleanupCtx, creds, imageURL); err != nil {
		f.logger.Printf("client: could not remove orphan image %s: %v", imageURL, err)
	}
}

func (f *ProductForm) fail(message string, err error) {
	f.mu.Lock()
	f.state = FormFailed
	var verr *ValidationError
	if errors.As(err, &verr) {
		f.errors = verr.Fields
	}
	detached := f.detached
	f.mu.Unlock()

	if !detached {
		f.notifyError(message)
	}
}

func (f *ProductForm) succeed() {
	f.mu.Lock()
	f.state = FormSucceeded
	f.values = FormValues{}
	f.errors = map[string]string{}
	detached := f.detached
	f.mu.Unlock()

	if f.bus != nil {
		f.bus.Publish(ListChanged)
	}
	if detached {
		return
	}
	if f.notifier != nil {
		f.notifier.Success(MessageCreated)
	}
	if f.navigator != nil {
		f.navigator.Navigate(RouteProducts)
	}
}

func (f *ProductForm) notifyError(message string) {
	if f.notifier != nil {
		f.notifier.Error(message)
	}
}
