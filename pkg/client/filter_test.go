package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fixtureProducts() []Product {
	return []Product{
		{ID: "1", Titulo: "Mesa de Jantar", Descricao: "Madeira maciça", Preco: 450, Categoria: "moveis", Status: "ativo"},
		{ID: "2", Titulo: "Carrinho", Descricao: "Brinquedo de corrida", Preco: 35, Categoria: "brinquedos", Status: "vendido"},
	}
}

func ids(products []Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestFilterProducts(t *testing.T) {
	list := fixtureProducts()

	tests := []struct {
		name   string
		search string
		status string
		want   []string
	}{
		{"search matches titulo ignoring case", "mesa", StatusAll, []string{"1"}},
		{"status only", "", "vendido", []string{"2"}},
		{"search matches descricao", "CORRIDA", StatusAll, []string{"2"}},
		{"everything", "", StatusAll, []string{"1", "2"}},
		{"search and status must both match", "mesa", "vendido", []string{}},
		{"status compared ignoring case", "", "ATIVO", []string{"1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterProducts(list, tt.search, tt.status)))
		})
	}

	assert.Equal(t, fixtureProducts(), list, "input must not be modified")
}

func TestFilter_PendingValuesDoNotApply(t *testing.T) {
	list := fixtureProducts()
	f := NewFilter()

	assert.Equal(t, []string{"1", "2"}, ids(f.Visible(list, 1)))

	f.SetSearchTerm("mesa")
	f.SetStatus("vendido")
	assert.Equal(t, []string{"1", "2"}, ids(f.Visible(list, 1)))

	search, status := f.Pending()
	assert.Equal(t, "mesa", search)
	assert.Equal(t, "vendido", status)
	search, status = f.Applied()
	assert.Equal(t, "", search)
	assert.Equal(t, StatusAll, status)

	f.SetSearchTerm("")
	f.Apply()
	assert.Equal(t, []string{"2"}, ids(f.Visible(list, 1)))
}

func TestFilter_Memoizes(t *testing.T) {
	list := fixtureProducts()
	f := NewFilter()

	f.Visible(list, 1)
	f.Visible(list, 1)
	assert.Equal(t, 1, f.computations)

	f.SetSearchTerm("carrinho")
	f.Visible(list, 1)
	assert.Equal(t, 1, f.computations, "pending edits must not recompute")

	f.Apply()
	f.Visible(list, 1)
	assert.Equal(t, 2, f.computations)

	f.Visible(list, 2)
	assert.Equal(t, 3, f.computations)
}
