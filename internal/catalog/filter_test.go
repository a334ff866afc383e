package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"routine-builder/internal/domain"
)

func sampleProducts() []domain.Product {
	return []domain.Product{
		{ID: "p1", Name: "Revitalift Day Cream", Category: "Moisturizer", Description: "Anti-wrinkle day cream."},
		{ID: "p2", Name: "Micellar Cleansing Water", Category: "Cleanser", Description: "Removes makeup and impurities."},
		{ID: "p3", Name: "Hydra Genius Moisturizer", Category: "Moisturizer", Description: "Lightweight water-based gel."},
		{ID: "p4", Name: "Total Repair Shampoo", Category: "Haircare", Description: "Repairing shampoo for damaged hair."},
	}
}

func ids(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestFilter_EmptyFiltersReturnAll(t *testing.T) {
	got := Filter(sampleProducts(), "", "")
	require.Equal(t, []string{"p1", "p2", "p3", "p4"}, ids(got))
}

func TestFilter_CategoryCaseInsensitive(t *testing.T) {
	got := Filter(sampleProducts(), "MOISTURIZER", "")
	require.Equal(t, []string{"p1", "p3"}, ids(got))
}

func TestFilter_QueryMatchesNameOrDescription(t *testing.T) {
	cases := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "name match", query: "micellar", want: []string{"p2"}},
		{name: "description match", query: "damaged hair", want: []string{"p4"}},
		{name: "case insensitive", query: "CREAM", want: []string{"p1"}},
		{name: "no match", query: "serum", want: []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ids(Filter(sampleProducts(), "", tc.query)))
		})
	}
}

func TestFilter_CategoryAndQueryCombine(t *testing.T) {
	got := Filter(sampleProducts(), "moisturizer", "water")
	require.Equal(t, []string{"p3"}, ids(got))
}

func TestFilter_PreservesOrderAndIsSubsequence(t *testing.T) {
	products := sampleProducts()
	got := Filter(products, "", "a")

	// Every result must appear in the input, in input order.
	i := 0
	for _, p := range got {
		for i < len(products) && products[i].ID != p.ID {
			i++
		}
		require.Less(t, i, len(products), "result %s is not an in-order element of the catalog", p.ID)
		i++
	}
	for _, p := range got {
		q := strings.ToLower("a")
		require.True(t,
			strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Description), q))
	}
}

func TestFilter_PureUnderRepeatedCalls(t *testing.T) {
	products := sampleProducts()
	first := Filter(products, "moisturizer", "gel")
	second := Filter(products, "moisturizer", "gel")
	require.Equal(t, first, second)
	require.Equal(t, sampleProducts(), products, "input must not be mutated")
}

func TestCategories_DistinctInCatalogOrder(t *testing.T) {
	got := Categories(sampleProducts())
	require.Equal(t, []string{"Moisturizer", "Cleanser", "Haircare"}, got)
}
