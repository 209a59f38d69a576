package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitrine/internal/config"
	"vitrine/internal/models"
	"vitrine/internal/server"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func testConfig(t *testing.T, overrides map[string]interface{}) config.Config {
	t.Helper()
	v := config.New()
	v.Set("DB_DRIVER", config.DriverMemory)
	v.Set("JWT_SECRET", "test_jwt_secret")
	for k, val := range overrides {
		v.Set(k, val)
	}
	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	return cfg
}

func TestBuildDependencies_Memory(t *testing.T) {
	cfg := testConfig(t, nil)
	fs := afero.NewMemMapFs()

	deps, cleanup, err := buildDependencies(context.Background(), cfg, fs)
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, deps.Products)
	assert.NotNil(t, deps.Users)
	assert.NotNil(t, deps.Images)
	assert.Nil(t, deps.Publisher)
	assert.Nil(t, deps.RateCounter)

	exists, err := afero.DirExists(fs, cfg.UploadDir)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestBuildDependencies_UnreachableRedisIsSkipped(t *testing.T) {
	cfg := testConfig(t, map[string]interface{}{"REDIS_ADDR": "127.0.0.1:1"})

	deps, cleanup, err := buildDependencies(context.Background(), cfg, afero.NewMemMapFs())
	require.NoError(t, err)
	defer cleanup()

	assert.Nil(t, deps.RateCounter)
}

func TestOpenStore_SQLite(t *testing.T) {
	cfg := testConfig(t, map[string]interface{}{
		"DB_DRIVER":    config.DriverSQLite,
		"DATABASE_DSN": fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})

	products, users, closeStore, err := openStore(context.Background(), cfg)
	require.NoError(t, err)
	defer closeStore()

	require.NoError(t, products.Create(context.Background(), &models.Product{
		Titulo: "Luminária", Descricao: "Luminária de mesa", Preco: 59.9, Categoria: "decoracao",
	}))
	all, err := products.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.NotNil(t, users)
}

func TestSeedProducts(t *testing.T) {
	cfg := testConfig(t, nil)
	products, _, _, err := openStore(context.Background(), cfg)
	require.NoError(t, err)

	seedProducts(context.Background(), products)
	seedProducts(context.Background(), products)

	all, err := products.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Mesa de jantar", all[0].Titulo)
}

func TestApp_HealthAndProtectedListing(t *testing.T) {
	cfg := testConfig(t, nil)
	deps, cleanup, err := buildDependencies(context.Background(), cfg, afero.NewMemMapFs())
	require.NoError(t, err)
	defer cleanup()
	seedProducts(context.Background(), deps.Products)

	app := server.New(cfg, deps)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health["status"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/products", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"name":"Ana","email":"ana@example.com","password":"secret123"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var token struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&token))

	req = httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var listed []models.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	assert.Len(t, listed, 3)
}
