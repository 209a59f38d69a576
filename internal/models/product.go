package models

import (
	"strings"
	"time"
)

// ProductStatus is the lifecycle tag of a listing.
type ProductStatus string

const (
	StatusAtivo   ProductStatus = "ativo"
	StatusInativo ProductStatus = "inativo"
	StatusVendido ProductStatus = "vendido"
)

// DefaultProductStatus is applied by the persistence layer when no status is given.
const DefaultProductStatus = StatusInativo

// Product represents a seller listing.
type Product struct {
	ID        string        `json:"_id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	Titulo    string        `json:"titulo" bson:"titulo" gorm:"type:varchar(255);not null"`
	Descricao string        `json:"descricao" bson:"descricao" gorm:"type:text;not null"`
	Preco     float64       `json:"preco" bson:"preco" gorm:"not null"`
	Categoria string        `json:"categoria" bson:"categoria" gorm:"type:varchar(100);not null"`
	Status    ProductStatus `json:"status" bson:"status" gorm:"type:varchar(10);not null;default:inativo"`
	ImagemURL string        `json:"imagemUrl" bson:"imagemUrl" gorm:"column:imagem_url;type:varchar(512)"`
	CreatedAt time.Time     `json:"createdAt" bson:"createdAt" gorm:"index"`
	UpdatedAt time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// Normalize applies the entity-level defaults every store relies on:
// the title is trimmed and a missing status falls back to inativo.
func (p *Product) Normalize() {
	p.Titulo = strings.TrimSpace(p.Titulo)
	if p.Status == "" {
		p.Status = DefaultProductStatus
	}
}

// Touch stamps creation and modification times, keeping an existing CreatedAt.
func (p *Product) Touch(now time.Time) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}
