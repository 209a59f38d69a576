package handlers

import (
	"errors"
	"log"

	"vitrine/internal/middleware"
	"vitrine/internal/models"
	"vitrine/internal/services"
	"vitrine/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products and their images.
type ProductHandler struct {
	service *services.ProductService
	images  *storage.ImageStore
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, images *storage.ImageStore) *ProductHandler {
	return &ProductHandler{
		service: service,
		images:  images,
	}
}

// RegisterRoutes registers the product routes behind the given middleware.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, mw ...fiber.Handler) {
	productRoutes := router.Group("/products", mw...)
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Post("/upload", h.HandleUploadImage)
	productRoutes.Delete("/upload/:name", h.HandleDeleteImage)
}

// RegisterPublicRoutes serves uploaded images without authentication, under
// the same prefix the store puts in the URLs it returns.
func (h *ProductHandler) RegisterPublicRoutes(router fiber.Router) {
	router.Get(h.images.PublicPrefix()+"/:name", h.HandleServeImage)
}

// HandleListProducts returns every product in storage order.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext())
	if err != nil {
		log.Printf("Error listing products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve products",
			"error":   err.Error(),
		})
	}
	return c.JSON(products)
}

// HandleCreateProduct validates the body and creates a product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	cmd, err := models.DecodeCreateProduct(c.Body())
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"errors":  verr.Map(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	product, err := h.service.CreateProduct(c.UserContext(), cmd)
	if err != nil {
		log.Printf("Error creating product: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create product",
			"error":   err.Error(),
		})
	}

	log.Printf("Product %s created by user %s", product.ID, middleware.UserID(c))
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUploadImage stores the multipart field "file" and returns its URL.
func (h *ProductHandler) HandleUploadImage(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Image file is required",
			"error":   err.Error(),
		})
	}
	if fileHeader.Size > h.images.MaxBytes() {
		return uploadError(c, storage.ErrTooLarge)
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("Error opening uploaded file %s: %v", fileHeader.Filename, err)
		return uploadError(c, err)
	}
	defer file.Close()

	imageURL, err := h.images.Save(file)
	if err != nil {
		log.Printf("Error saving uploaded file %s: %v", fileHeader.Filename, err)
		return uploadError(c, err)
	}

	return c.JSON(fiber.Map{"imageUrl": imageURL})
}

// HandleDeleteImage removes an uploaded image that no product ended up using.
func (h *ProductHandler) HandleDeleteImage(c *fiber.Ctx) error {
	name := c.Params("name")
	if err := h.images.Delete(name); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Image not found"})
		case errors.Is(err, storage.ErrInvalidName):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid image name"})
		}
		log.Printf("Error deleting image %s: %v", name, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete image",
			"error":   err.Error(),
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleServeImage streams a stored image.
func (h *ProductHandler) HandleServeImage(c *fiber.Ctx) error {
	file, contentType, err := h.images.Open(c.Params("name"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
			return c.SendStatus(fiber.StatusNotFound)
		}
		log.Printf("Error serving image: %v", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.SendStream(file)
}

func uploadError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Could not upload image"
	switch {
	case errors.Is(err, storage.ErrNoFile):
		status, message = fiber.StatusBadRequest, "Image file is required"
	case errors.Is(err, storage.ErrTooLarge):
		status, message = fiber.StatusRequestEntityTooLarge, "Image is too large"
	case errors.Is(err, storage.ErrUnsupportedType):
		status, message = fiber.StatusUnsupportedMediaType, "Unsupported image type"
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}
