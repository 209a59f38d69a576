package client

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductAPI is a mock implementation of ProductAPI
type MockProductAPI struct {
	mock.Mock
}

func (m *MockProductAPI) UploadImage(ctx context.Context, creds Credentials, fileName string, data []byte) (string, error) {
	args := m.Called(ctx, creds, fileName, data)
	return args.String(0), args.Error(1)
}

func (m *MockProductAPI) CreateProduct(ctx context.Context, creds Credentials, payload ProductPayload) (*Product, error) {
	args := m.Called(ctx, creds, payload)
	if p, ok := args.Get(0).(*Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductAPI) DeleteImage(ctx context.Context, creds Credentials, imageURL string) error {
	args := m.Called(ctx, creds, imageURL)
	return args.Error(0)
}

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

type recordingNavigator struct {
	routes []string
}

func (n *recordingNavigator) Navigate(route string) { n.routes = append(n.routes, route) }

var testImage = []byte("\x89PNG\r\n\x1a\nfake")

type formFixture struct {
	api       *MockProductAPI
	notifier  *recordingNotifier
	navigator *recordingNavigator
	changes   int
	form      *ProductForm
}

func newFormFixture() *formFixture {
	fx := &formFixture{
		api:       new(MockProductAPI),
		notifier:  &recordingNotifier{},
		navigator: &recordingNavigator{},
	}
	bus := NewEventBus()
	bus.Subscribe(ListChanged, func() { fx.changes++ })
	fx.form = NewProductForm(fx.api, func() Credentials { return Bearer("tok") }, bus, fx.notifier, fx.navigator)
	fx.form.SetLogger(log.New(io.Discard, "", 0))
	return fx
}

func (fx *formFixture) fillValid() {
	fx.form.SetTitulo("Mesa de jantar")
	fx.form.SetValor("R$ 1.234,56")
	fx.form.SetDescricao("Mesa de madeira maciça para seis pessoas")
	fx.form.SetCategoria("moveis")
}

func expectedPayload() ProductPayload {
	return ProductPayload{
		Titulo:    "Mesa de jantar",
		Descricao: "Mesa de madeira maciça para seis pessoas",
		Preco:     1234.56,
		Categoria: "moveis",
		Status:    "ativo",
		ImagemURL: "/uploads/abc.png",
	}
}

func TestProductForm_SubmitWithoutImage(t *testing.T) {
	fx := newFormFixture()
	fx.fillValid()

	err := fx.form.Submit(context.Background())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "image")
	assert.Equal(t, []string{MessageImageRequired}, fx.notifier.errors)
	assert.Equal(t, FormIdle, fx.form.State())
	assert.Equal(t, "Mesa de jantar", fx.form.Values().Titulo)
	fx.api.AssertExpectations(t)
	fx.api.AssertNotCalled(t, "UploadImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	fx.form.SetImage("foto.png", testImage)
	assert.NotContains(t, fx.form.Errors(), "image")
}

func TestProductForm_FieldErrors(t *testing.T) {
	fx := newFormFixture()
	fx.form.SetTitulo("ab")
	fx.form.SetValor("abc")
	fx.form.SetDescricao("curta")
	fx.form.SetImage("foto.png", testImage)

	err := fx.form.Submit(context.Background())
	require.Error(t, err)

	assert.Equal(t, map[string]string{
		"titulo":    "O título é obrigatório.",
		"valor":     "Informe um valor válido.",
		"descricao": "A descrição deve ter pelo menos 10 caracteres.",
		"categoria": "Por favor, selecione uma categoria.",
	}, fx.form.Errors())
	assert.Empty(t, fx.notifier.errors)
	fx.api.AssertNotCalled(t, "UploadImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProductForm_UploadFails(t *testing.T) {
	fx := newFormFixture()
	fx.fillValid()
	fx.form.SetImage("foto.png", testImage)
	uploadErr := &UploadError{StatusCode: 415, Message: "Unsupported image type"}
	fx.api.On("UploadImage", mock.Anything, Bearer("tok"), "foto.png", testImage).Return("", uploadErr)

	err := fx.form.Submit(context.Background())

	assert.ErrorIs(t, err, uploadErr)
	assert.Equal(t, FormFailed, fx.form.State())
	assert.Equal(t, []string{MessageUploadFailed}, fx.notifier.errors)
	assert.Zero(t, fx.changes)
	fx.api.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything, mock.Anything)
	fx.api.AssertExpectations(t)
}

func TestProductForm_CreateFailsAfterUpload(t *testing.T) {
	fx := newFormFixture()
	fx.fillValid()
	fx.form.SetImage("foto.png", testImage)
	fx.api.On("UploadImage", mock.Anything, Bearer("tok"), "foto.png", testImage).Return("/uploads/abc.png", nil)
	fx.api.On("CreateProduct", mock.Anything, Bearer("tok"), expectedPayload()).
		Return(nil, &StorageError{StatusCode: 500, Message: "Could not create product"})
	fx.api.On("DeleteImage", mock.Anything, Bearer("tok"), "/uploads/abc.png").Return(nil)

	err := fx.form.Submit(context.Background())

	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, FormFailed, fx.form.State())
	assert.Equal(t, []string{MessageCreateFailed}, fx.notifier.errors)
	assert.Zero(t, fx.changes, "list must not be invalidated")
	assert.Empty(t, fx.navigator.routes)
	assert.Equal(t, "Mesa de jantar", fx.form.Values().Titulo)
	assert.Equal(t, "R$ 1.234,56", fx.form.Values().Valor)
	fx.api.AssertExpectations(t)

	fx.form.SetTitulo("Mesa de jantar redonda")
	assert.Equal(t, FormIdle, fx.form.State())
}

func TestProductForm_CompensationFailureIsNotFatal(t *testing.T) {
	fx := newFormFixture()
	fx.fillValid()
	fx.form.SetImage("foto.png", testImage)
	fx.api.On("UploadImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("/uploads/abc.png", nil)
	fx.api.On("CreateProduct", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("network down"))
	fx.api.On("DeleteImage", mock.Anything, mock.Anything, "/uploads/abc.png").Return(errors.New("network down"))

	err := fx.form.Submit(context.Background())

	assert.EqualError(t, err, "network down")
	assert.Equal(t, FormFailed, fx.form.State())
	fx.api.AssertExpectations(t)
}

func TestProductForm_Success(t *testing.T) {
	fx := newFormFixture()
	fx.fillValid()
	fx.form.SetImage("foto.png", testImage)
	fx.api.On("UploadImage", mock.Anything, Bearer("tok"), "foto.png", testImage).Return("/uploads/abc.png", nil)
	fx.api.On("CreateProduct", mock.Anything, Bearer("tok"), expectedPayload()).
		Return(&Product{ID: "p1", Titulo: "Mesa de jantar", Status: "ativo"}, nil)

	require.NoError(t, fx.form.Submit(context.Background()))

	assert.Equal(t, FormSucceeded, fx.form.State())
	assert.Equal(t, 1, fx.changes)
	assert.Equal(t, []string{MessageCreated}, fx.notifier.successes)
	assert.Empty(t, fx.notifier.errors)
	assert.Equal(t, []string{RouteProducts}, fx.navigator.routes)
	assert.Equal(t, FormValues{}, fx.form.Values())
	fx.api.AssertNotCalled(t, "DeleteImage", mock.Anything, mock.Anything, mock.Anything)
	fx.api.AssertExpectations(t)
}

func TestProductForm_RejectsDuplicateSubmit(t *testing.T) {
	fx := newFormFixture()
	fx.fillValid()
	fx.form.SetImage("foto.png", testImage)
	gate := make(chan struct{})
	fx.api.On("UploadImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-gate }).
		Return("/uploads/abc.png", nil)
	fx.api.On("CreateProduct", mock.Anything, mock.Anything, mock.Anything).
		Return(&Product{ID: "p1"}, nil)

	done := make(chan error, 1)
	go func() { done <- fx.form.Submit(context.Background()) }()
	require.Eventually(t, func() bool { return fx.form.State() == FormSubmitting }, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, fx.form.Submit(context.Background()), ErrSubmitInProgress)

	close(gate)
	require.NoError(t, <-done)
	fx.api.AssertNumberOfCalls(t, "UploadImage", 1)
}

func TestProductForm_DetachedCompletionIsSilent(t *testing.T) {
	fx := newFormFixture()
	fx.fillValid()
	fx.form.SetImage("foto.png", testImage)
	gate := make(chan struct{})
	fx.api.On("UploadImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-gate }).
		Return("/uploads/abc.png", nil)
	fx.api.On("CreateProduct", mock.Anything, mock.Anything, mock.Anything).
		Return(&Product{ID: "p1"}, nil)

	done := make(chan error, 1)
	go func() { done <- fx.form.Submit(context.Background()) }()
	require.Eventually(t, func() bool { return fx.form.State() == FormSubmitting }, time.Second, 5*time.Millisecond)

	fx.form.Detach()
	close(gate)
	require.NoError(t, <-done)

	assert.Empty(t, fx.notifier.successes)
	assert.Empty(t, fx.navigator.routes)
	assert.Equal(t, 1, fx.changes, "the list still changed on the server")
}

func TestValidateForm_EmptyImageCountsAsMissing(t *testing.T) {
	errs := ValidateForm(FormValues{
		Titulo:    "Mesa",
		Valor:     "10",
		Descricao: "Descrição longa o bastante",
		Categoria: "outra",
		Image:     &Image{Name: "vazia.png"},
	})
	assert.Equal(t, map[string]string{"image": "A imagem é obrigatória."}, errs)
}
