package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"vitrine/internal/models"
	"vitrine/internal/repositories"
)

// EventTypeProductCreated is published after a product is persisted.
const EventTypeProductCreated = "product.created"

// EventPublisher delivers serialized domain events to a broker.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, body []byte) error
}

// ProductCreatedEvent is the payload of EventTypeProductCreated.
type ProductCreatedEvent struct {
	EventType  string               `json:"eventType"`
	ProductID  string               `json:"productId"`
	Titulo     string               `json:"titulo"`
	Categoria  string               `json:"categoria"`
	Status     models.ProductStatus `json:"status"`
	Preco      float64              `json:"preco"`
	OccurredAt time.Time            `json:"occurredAt"`
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
}

// NewProductService creates a new ProductService. publisher may be nil.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
	}
}

// ListProducts retrieves all products in storage order.
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// CreateProduct persists a validated command and announces the new product.
// A failed announcement is logged; the product is still created.
func (s *ProductService) CreateProduct(ctx context.Context, cmd models.CreateProductCommand) (*models.Product, error) {
	product := cmd.Product()
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.publishCreated(ctx, product)
	return product, nil
}

func (s *ProductService) publishCreated(ctx context.Context, p *models.Product) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(ProductCreatedEvent{
		EventType:  EventTypeProductCreated,
		ProductID:  p.ID,
		Titulo:     p.Titulo,
		Categoria:  p.Categoria,
		Status:     p.Status,
		Preco:      p.Preco,
		OccurredAt: p.CreatedAt,
	})
	if err != nil {
		log.Printf("Failed to marshal product event: %v", err)
		return
	}
	if err := s.publisher.Publish(ctx, EventTypeProductCreated, body); err != nil {
		log.Printf("Warning: Failed to publish product created event for product %s: %v", p.ID, err)
	}
}
