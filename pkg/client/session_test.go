package client

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAuthenticator is a mock implementation of Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthenticator) Register(ctx context.Context, name, email, password string) (string, error) {
	args := m.Called(ctx, name, email, password)
	return args.String(0), args.Error(1)
}

func TestCredentials(t *testing.T) {
	assert.False(t, Unauthenticated().Authenticated())
	assert.False(t, Credentials{}.Authenticated())
	assert.True(t, Bearer("abc").Authenticated())
	assert.Equal(t, "abc", Bearer("abc").Token())
}

func TestFileTokenStore(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewFileTokenStore(fs, "/home/seller/.vitrine/token")

	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save("abc.def.ghi"))
	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	token, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestSession(t *testing.T) {
	ctx := context.Background()
	auth := new(MockAuthenticator)
	auth.On("Login", ctx, "ana@example.com", "secret123").Return("tok-login", nil)
	auth.On("Login", ctx, "ana@example.com", "wrong").Return("", ErrInvalidCredentials)
	auth.On("Register", ctx, "Ana", "ana@example.com", "secret123").Return("tok-register", nil)

	store := &MemoryTokenStore{}
	session, err := NewSession(auth, store)
	require.NoError(t, err)
	assert.False(t, session.IsAuthenticated())

	require.NoError(t, session.Register(ctx, anaRegistration()))
	assert.Equal(t, Bearer("tok-register"), session.Credentials())

	require.NoError(t, session.Login(ctx, LoginForm{Email: "ana@example.com", Password: "secret123"}))
	assert.Equal(t, Bearer("tok-login"), session.Credentials())
	saved, _ := store.Load()
	assert.Equal(t, "tok-login", saved)

	assert.ErrorIs(t, session.Login(ctx, LoginForm{Email: "ana@example.com", Password: "wrong"}), ErrInvalidCredentials)
	assert.Equal(t, Bearer("tok-login"), session.Credentials(), "a failed login keeps the old token")

	require.NoError(t, session.Logout())
	assert.False(t, session.IsAuthenticated())
	saved, _ = store.Load()
	assert.Empty(t, saved)

	restored, err := NewSession(auth, &MemoryTokenStore{token: "persisted"})
	require.NoError(t, err)
	assert.Equal(t, Bearer("persisted"), restored.Credentials())
	auth.AssertExpectations(t)
}

func anaRegistration() RegisterForm {
	return RegisterForm{
		Name:            "Ana",
		Telefone:        "(11) 98765-4321",
		Email:           "ana@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}
}

func TestValidateRegister(t *testing.T) {
	assert.Empty(t, ValidateRegister(anaRegistration()))

	errs := ValidateRegister(RegisterForm{
		Name:            "Al",
		Telefone:        "11 9876",
		Email:           "ana@",
		Password:        "123",
		ConfirmPassword: "1234",
	})
	assert.Equal(t, map[string]string{
		"name":            "O nome deve ter pelo menos 3 caracteres.",
		"telefone":        "Por favor, insira um telefone válido.",
		"email":           "Por favor, insira um e-mail válido.",
		"password":        "A senha deve ter no mínimo 6 caracteres.",
		"confirmPassword": "As senhas não coincidem.",
	}, errs)

	mismatch := anaRegistration()
	mismatch.ConfirmPassword = "secret124"
	assert.Equal(t, map[string]string{"confirmPassword": "As senhas não coincidem."}, ValidateRegister(mismatch))
}

func TestValidateLogin(t *testing.T) {
	assert.Empty(t, ValidateLogin(LoginForm{Email: "ana@example.com", Password: "x"}))
	assert.Equal(t, map[string]string{
		"email":    "O e-mail é obrigatório.",
		"password": "A senha é obrigatória.",
	}, ValidateLogin(LoginForm{}))
	assert.Equal(t, "Por favor, insira um e-mail válido.", ValidateLogin(LoginForm{Email: "ana", Password: "x"})["email"])
}

func TestSession_InvalidFormsSkipTheAPI(t *testing.T) {
	ctx := context.Background()
	auth := new(MockAuthenticator)
	session, err := NewSession(auth, &MemoryTokenStore{})
	require.NoError(t, err)

	form := anaRegistration()
	form.ConfirmPassword = "outra"
	err = session.Register(ctx, form)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "As senhas não coincidem.", verr.Fields["confirmPassword"])

	err = session.Login(ctx, LoginForm{Email: "not-an-email", Password: "secret123"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")

	assert.False(t, session.IsAuthenticated())
	auth.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	auth.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}
