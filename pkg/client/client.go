// Package client is the seller-side SDK for the vitrine API: an HTTP adapter plus the
// product list query, filtering, product form and session logic a UI drives.
package client

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/viper"
)

// DefaultTimeout bounds every request when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Config holds the API location and transport settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// ConfigFromEnv reads CLIENT_BASE_URL and CLIENT_TIMEOUT.
func ConfigFromEnv() Config {
	v := viper.New()
	v.SetDefault("CLIENT_BASE_URL", "http://localhost:8080")
	v.SetDefault("CLIENT_TIMEOUT", DefaultTimeout.String())
	v.AutomaticEnv()
	return Config{
		BaseURL: v.GetString("CLIENT_BASE_URL"),
		Timeout: v.GetDuration("CLIENT_TIMEOUT"),
	}
}

// Product mirrors the API's product representation.
type Product struct {
	ID        string    `json:"_id"`
	Titulo    string    `json:"titulo"`
	Descricao string    `json:"descricao"`
	Preco     float64   `json:"preco"`
	Categoria string    `json:"categoria"`
	Status    string    `json:"status"`
	ImagemURL string    `json:"imagemUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProductPayload is the body of a product creation.
type ProductPayload struct {
	Titulo    string  `json:"titulo"`
	Descricao string  `json:"descricao"`
	Preco     float64 `json:"preco"`
	Categoria string  `json:"categoria"`
	Status    string  `json:"status,omitempty"`
	ImagemURL string  `json:"imagemUrl,omitempty"`
}

// Client talks to the vitrine REST API.
type Client struct {
	http    *resty.Client
	baseURL string
	logger  *log.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sends client logs to l.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHTTPClient uses hc as the underlying transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = resty.NewWithClient(hc).SetBaseURL(c.baseURL).SetTimeout(hc.Timeout)
	}
}

// New creates a Client for cfg.BaseURL.
func New(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	c := &Client{
		http:    resty.New().SetBaseURL(baseURL).SetTimeout(cfg.Timeout),
		baseURL: baseURL,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.SetHeader("Accept", "application/json")
	return c
}

// ImageURL resolves a product's imagemUrl against the API base URL.
func (c *Client) ImageURL(imagemURL string) string {
	if imagemURL == "" || strings.HasPrefix(imagemURL, "http://") || strings.HasPrefix(imagemURL, "https://") {
		return imagemURL
	}
	return c.baseURL + "/" + strings.TrimLeft(imagemURL, "/")
}

// ListProducts fetches every product in storage order.
func (c *Client) ListProducts(ctx context.Context, creds Credentials) ([]Product, error) {
	req := c.http.R().SetContext(ctx)
	if err := creds.apply(req); err != nil {
		return nil, err
	}
	var products []Product
	resp, err := req.SetResult(&products).Get("/products")
	if err := responseError("list products", resp, err); err != nil {
		return nil, err
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

// CreateProduct submits payload and returns the stored product.
func (c *Client) CreateProduct(ctx context.Context, creds Credentials, payload ProductPayload) (*Product, error) {
	req := c.http.R().SetContext(ctx)
	if err := creds.apply(req); err != nil {
		return nil, err
	}
	c.logger.Printf("client: creating product %q", payload.Titulo)
	var created Product
	resp, err := req.SetBody(payload).SetResult(&created).Post("/products")
	if err := responseError("create product", resp, err); err != nil {
		return nil, err
	}
	return &created, nil
}

// UploadImage sends data as the multipart field "file" and returns the stored image URL.
// Every failure is reported as *UploadError.
func (c *Client) UploadImage(ctx context.Context, creds Credentials, fileName string, data []byte) (string, error) {
	req := c.http.R().SetContext(ctx)
	if err := creds.apply(req); err != nil {
		return "", err
	}
	c.logger.Printf("client: uploading image %s (%d bytes)", fileName, len(data))
	var out struct {
		ImageURL string `json:"imageUrl"`
	}
	resp, err := req.
		SetFileReader("file", fileName, bytes.NewReader(data)).
		SetResult(&out).
		Post("/products/upload")
	if err := responseError("upload image", resp, err); err != nil {
		var netErr *NetworkError
		if errors.As(err, &netErr) {
			return "", &UploadError{Message: netErr.Error(), Err: netErr}
		}
		return "", &UploadError{StatusCode: resp.StatusCode(), Message: errorMessage(err), Err: err}
	}
	if out.ImageURL == "" {
		return "", &UploadError{StatusCode: resp.StatusCode(), Message: "response carried no imageUrl"}
	}
	return out.ImageURL, nil
}

// DeleteImage removes an uploaded image by the URL UploadImage returned.
func (c *Client) DeleteImage(ctx context.Context, creds Credentials, imageURL string) error {
	req := c.http.R().SetContext(ctx)
	if err := creds.apply(req); err != nil {
		return err
	}
	name := path.Base(imageURL)
	resp, err := req.SetPathParam("name", name).Delete("/products/upload/{name}")
	return responseError("delete image", resp, err)
}

// Login exchanges email and password for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	token, err := c.authenticate(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusUnauthorized {
		return "", ErrInvalidCredentials
	}
	return token, err
}

// Register creates an account and returns its access token.
func (c *Client) Register(ctx context.Context, name, email, password string) (string, error) {
	token, err := c.authenticate(ctx, "/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusConflict {
		return "", ErrEmailTaken
	}
	return token, err
}

func (c *Client) authenticate(ctx context.Context, endpoint string, body map[string]string) (string, error) {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	resp, err := c.http.R().SetContext(ctx).SetBody(body).SetResult(&out).Post(endpoint)
	if err := responseError(strings.TrimPrefix(endpoint, "/"), resp, err); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", &HTTPError{StatusCode: resp.StatusCode(), Message: "response carried no access_token"}
	}
	return out.AccessToken, nil
}

func errorMessage(err error) string {
	var verr *ValidationError
	var serr *StorageError
	var herr *HTTPError
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.As(err, &serr):
		return serr.Message
	case errors.As(err, &herr):
		return herr.Message
	}
	return err.Error()
}
