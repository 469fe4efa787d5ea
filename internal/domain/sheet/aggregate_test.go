package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateMenuCounts(t *testing.T) {
	headers := []string{"Nama", "Menu"}
	roles := ResolveHeaders(headers, KindMenu)
	menuHeader := HeaderFor(headers, roles, RoleMenu)

	t.Run("Identical items across rows sum", func(t *testing.T) {
		rows := []Row{
			NormalizeRow(0, headers, []string{"Ana", "Latte: 1"}, roles),
			NormalizeRow(1, headers, []string{"Bob", "Latte: 1"}, roles),
		}

		counts := AggregateMenuCounts(rows, menuHeader)
		assert.Equal(t, map[string]int{"Latte": 2}, counts)
	})

	t.Run("Whitespace variants share a bucket", func(t *testing.T) {
		rows := []Row{
			NormalizeRow(0, headers, []string{"Ana", "Es  Kopi: 2"}, roles),
			NormalizeRow(1, headers, []string{"Bob", "Es Kopi: 1"}, roles),
		}

		counts := AggregateMenuCounts(rows, menuHeader)
		assert.Equal(t, 3, counts["Es Kopi"])
	})

	t.Run("Mixed encodings in one cell", func(t *testing.T) {
		rows := []Row{
			NormalizeRow(0, headers, []string{"Ana", "Aren Signature: 1, Baileys Coffee 2 Reguler, Croissant"}, roles),
		}

		counts := AggregateMenuCounts(rows, menuHeader)
		assert.Equal(t, 1, counts["Aren Signature"])
		assert.Equal(t, 2, counts["Baileys Coffee"])
		assert.Equal(t, 1, counts["Croissant"])
	})

	t.Run("Sorted output is name-ascending", func(t *testing.T) {
		sorted := SortedMenuCounts(map[string]int{"Latte": 2, "Americano": 1, "Croissant": 3})

		require.Len(t, sorted, 3)
		assert.Equal(t, "Americano", sorted[0].Name)
		assert.Equal(t, "Croissant", sorted[1].Name)
		assert.Equal(t, "Latte", sorted[2].Name)
	})
}

func TestBuildPlaceMatrix(t *testing.T) {
	grid := Tokenize(
		"Tanggal,Rooftop,Indoor\n" +
			"15/01/2024,2,Penuh\n" +
			"16/01/2024,5,\n" +
			"15/01/2024,1,Tersedia\n")
	roles := ResolveHeaders(grid[0], KindPlace)

	matrix := BuildPlaceMatrix(grid, roles)

	t.Run("Dates are deduped and sorted", func(t *testing.T) {
		assert.Equal(t, []string{"2024-01-15", "2024-01-16"}, matrix.Dates)
	})

	t.Run("Numeric cells become floats", func(t *testing.T) {
		assert.Equal(t, 5.0, matrix.Places["Rooftop"]["2024-01-16"])
	})

	t.Run("Textual cells are kept verbatim", func(t *testing.T) {
		assert.Equal(t, "Tersedia", matrix.Places["Indoor"]["2024-01-15"])
	})

	t.Run("Later rows overwrite duplicate date cells", func(t *testing.T) {
		assert.Equal(t, 1.0, matrix.Places["Rooftop"]["2024-01-15"])
	})

	t.Run("Date column is not a place", func(t *testing.T) {
		_, ok := matrix.Places["Tanggal"]
		assert.False(t, ok)
	})

	t.Run("Raw map keeps every cell, rows sharing a date included", func(t *testing.T) {
		assert.Equal(t, "Penuh", matrix.Raw["Indoor|0"])
		assert.Equal(t, "", matrix.Raw["Indoor|1"])
		assert.Equal(t, "Tersedia", matrix.Raw["Indoor|2"])
	})

	t.Run("Empty grid yields empty matrix", func(t *testing.T) {
		m := BuildPlaceMatrix(nil, HeaderIndex{})
		assert.Empty(t, m.Dates)
		assert.Empty(t, m.Places)
	})
}

func TestListing(t *testing.T) {
	t.Run("Customer listing end to end", func(t *testing.T) {
		grid := Tokenize("Nama,NO WA\nAlice,0812\nBob,")
		roles, err := ResolveRequired(grid[0], KindMenu, RoleName)
		require.NoError(t, err)

		rows := Listing(grid, roles, true)

		require.Len(t, rows, 2)
		assert.Equal(t, 0, rows[0].Index)
		assert.Equal(t, "Alice", rows[0].Get("Nama"))
		assert.Equal(t, "0812", rows[0].Get("NO WA"))
		assert.Equal(t, 1, rows[1].Index)
		assert.Equal(t, "Bob", rows[1].Get("Nama"))
		assert.Equal(t, "", rows[1].Get("NO WA"))
	})

	t.Run("Header echoes are dropped but indices kept", func(t *testing.T) {
		grid := Tokenize("Nama,NO WA\nNAMA,no wa\nAlice,0812")
		roles := ResolveHeaders(grid[0], KindMenu)

		rows := Listing(grid, roles, true)

		require.Len(t, rows, 1)
		assert.Equal(t, 1, rows[0].Index)
		assert.Equal(t, "Alice", rows[0].Get("Nama"))
	})

	t.Run("Header echo kept when filtering disabled", func(t *testing.T) {
		grid := Tokenize("Nama\nNama\nAlice")
		roles := ResolveHeaders(grid[0], KindMenu)

		rows := Listing(grid, roles, false)
		assert.Len(t, rows, 2)
	})
}

func TestFilterByExternalID(t *testing.T) {
	headers := []string{"Nama", "ID WA", "Menu"}
	roles := ResolveHeaders(headers, KindMenu)
	rows := []Row{
		NormalizeRow(0, headers, []string{"Ana", "628-aa", "Latte: 1"}, roles),
		NormalizeRow(1, headers, []string{"Bob", "628-bb", "Latte: 1"}, roles),
		NormalizeRow(2, headers, []string{"Ana", "628-aa", "Croissant"}, roles),
	}

	t.Run("Keeps only matching rows", func(t *testing.T) {
		got := FilterByExternalID(rows, headers, roles, "628-aa")

		require.Len(t, got, 2)
		assert.Equal(t, 0, got[0].Index)
		assert.Equal(t, 2, got[1].Index)
	})

	t.Run("No match yields empty", func(t *testing.T) {
		assert.Empty(t, FilterByExternalID(rows, headers, roles, "628-zz"))
	})

	t.Run("Unresolved external id column matches nothing", func(t *testing.T) {
		hs := []string{"Nama"}
		rs := ResolveHeaders(hs, KindMenu)
		assert.Empty(t, FilterByExternalID(rows, hs, rs, "628-aa"))
	})
}
