package client

import (
	"context"
	"strings"
)

// ViewStatus distinguishes the states of the product listing.
type ViewStatus int

const (
	ViewLoading ViewStatus = iota
	ViewError
	ViewNoMatches
	ViewReady
)

func (s ViewStatus) String() string {
	switch s {
	case ViewLoading:
		return "loading"
	case ViewError:
		return "error"
	case ViewNoMatches:
		return "no-matches"
	case ViewReady:
		return "ready"
	}
	return "unknown"
}

// Messages shown for the non-ready states.
const (
	MessageLoading   = "Carregando produtos..."
	MessageError     = "Erro ao carregar os produtos."
	MessageNoMatches = "Nenhum produto encontrado com os filtros selecionados."
)

// Badge variants for product status.
const (
	BadgeDefault     = "default"
	BadgeSecondary   = "secondary"
	BadgeDestructive = "destructive"
)

// ProductCard is the display form of one product.
type ProductCard struct {
	ID        string
	Titulo    string
	Descricao string
	Preco     string
	Status    string
	Badge     string
	Categoria string
	ImageURL  string
}

// ViewState is what the listing shows.
type ViewState struct {
	Status  ViewStatus
	Message string
	Cards   []ProductCard
	Err     error
}

// ListView combines the product query and the filter.
type ListView struct {
	query  *ProductQuery
	filter *Filter
	images func(string) string
}

// NewListView renders query through filter. images resolves image URLs and may be nil.
func NewListView(query *ProductQuery, filter *Filter, images func(string) string) *ListView {
	if images == nil {
		images = func(u string) string { return u }
	}
	return &ListView{query: query, filter: filter, images: images}
}

// Render reads the query, fetching when needed, and builds the view.
func (v *ListView) Render(ctx context.Context) ViewState {
	return v.build(v.query.Read(ctx))
}

// Current builds the view from the query's current state without fetching.
func (v *ListView) Current() ViewState {
	return v.build(v.query.State())
}

func (v *ListView) build(state QueryState) ViewState {
	switch {
	case state.IsError:
		return ViewState{Status: ViewError, Message: MessageError, Err: state.Err}
	case state.IsLoading:
		return ViewState{Status: ViewLoading, Message: MessageLoading}
	}

	visible := v.filter.Visible(state.Data, state.Version)
	if len(visible) == 0 {
		return ViewState{Status: ViewNoMatches, Message: MessageNoMatches}
	}
	cards := make([]ProductCard, 0, len(visible))
	for _, p := range visible {
		cards = append(cards, NewProductCard(p, v.images))
	}
	return ViewState{Status: ViewReady, Cards: cards}
}

// NewProductCard formats p for display.
func NewProductCard(p Product, images func(string) string) ProductCard {
	imageURL := p.ImagemURL
	if images != nil {
		imageURL = images(imageURL)
	}
	return ProductCard{
		ID:        p.ID,
		Titulo:    p.Titulo,
		Descricao: p.Descricao,
		Preco:     FormatBRL(p.Preco),
		Status:    strings.ToUpper(p.Status),
		Badge:     StatusBadge(p.Status),
		Categoria: strings.ToUpper(p.Categoria),
		ImageURL:  imageURL,
	}
}

// StatusBadge picks the badge variant for a status.
func StatusBadge(status string) string {
	switch strings.ToLower(status) {
	case "vendido":
		return BadgeSecondary
	case "inativo", "desativado":
		return BadgeDestructive
	}
	return BadgeDefault
}
