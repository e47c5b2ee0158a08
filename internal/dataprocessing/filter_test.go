package dataprocessing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "opsreports/internal/errors"
)

func salesTable() *Table {
	return NewTable(
		[]string{"Fecha", "Locación", "Cliente", "Venta Perdida CF", "Extra"},
		[][]string{
			{"01/03/2024", "Lima", "C1", "10", "x"},
			{"02/03/2024", "Lima", "C2", "0", "x"},
			{"03/03/2024", "Arequipa", "C1", "", "x"},
			{"04/03/2024", "Cusco", "C3", "7", "x"},
			{"05/03/2024", "Arequipa", "", "5.5", ""},
		},
	)
}

func TestSelectColumns(t *testing.T) {
	out, err := SelectColumns(salesTable(), []string{"Venta Perdida CF", "Locación"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Venta Perdida CF", "Locación"}, out.Columns())
	assert.Equal(t, []string{"10", "Lima"}, out.Records()[0])

	_, err = SelectColumns(salesTable(), []string{"Locación", "Ruta"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrColumnNotFound))
	assert.Contains(t, err.Error(), "Ruta")
	assert.Equal(t, apperrors.ErrTypeNotFound, apperrors.TypeOf(err))
}

func TestRestrictLocations(t *testing.T) {
	out, err := RestrictLocations(salesTable(), "Locación", []string{"Lima", "Arequipa"})
	require.NoError(t, err)
	assert.Equal(t, 4, out.Len())

	locs, err := out.Column("Locación")
	require.NoError(t, err)
	for _, v := range locs {
		assert.Contains(t, []string{"Lima", "Arequipa"}, v.Raw)
	}

	_, err = RestrictLocations(salesTable(), "Sede", nil)
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestNormalizeAndExcludeZero(t *testing.T) {
	out := NormalizeAndExcludeZero(salesTable(), "Venta Perdida CF")

	// "0" and the null (filled to "0") are dropped.
	assert.Equal(t, 3, out.Len())
	values, err := out.Column("Venta Perdida CF")
	require.NoError(t, err)
	for _, v := range values {
		n, err := ParseNumber(v.Raw)
		require.NoError(t, err)
		assert.False(t, n.IsZero())
	}

	last := out.Records()[2]
	assert.Equal(t, "0", last[2], "null category filled with 0")
	assert.Equal(t, "0", last[4])

	t.Run("absent zero column only fills nulls", func(t *testing.T) {
		out := NormalizeAndExcludeZero(salesTable(), "Carga Pvta CF")
		assert.Equal(t, 5, out.Len())
		for _, record := range out.Records() {
			for _, cell := range record {
				assert.NotEmpty(t, cell)
			}
		}
	})
}

func TestFilterApply(t *testing.T) {
	f := Filter{
		Columns:        []string{"Fecha", "Locación", "Cliente", "Venta Perdida CF"},
		LocationColumn: "Locación",
		Locations:      []string{"Lima", "Arequipa"},
		ZeroColumn:     "Venta Perdida CF",
	}

	once, err := f.Apply(salesTable())
	require.NoError(t, err)
	twice, err := f.Apply(once)
	require.NoError(t, err)

	assert.Equal(t, once.Columns(), twice.Columns())
	assert.Equal(t, once.Records(), twice.Records(), "Apply is idempotent")
	assert.Equal(t, 2, once.Len())

	_, err = Filter{Columns: []string{"Nope"}}.Apply(salesTable())
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestFilterExampleScenario(t *testing.T) {
	table := NewTable(
		[]string{"Locación", "Venta Perdida CF", "Fecha"},
		[][]string{
			{"A", "4", "01/01/2024"},
			{"A", "6.25", "02/01/2024"},
			{"B", "3", "03/01/2024"},
		},
	)

	out, err := Filter{
		Columns:        []string{"Locación", "Venta Perdida CF", "Fecha"},
		LocationColumn: "Locación",
		Locations:      []string{"A"},
		ZeroColumn:     "Venta Perdida CF",
	}.Apply(table)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())

	series, err := Aggregate(out, []string{"Locación"}, "Venta Perdida CF", Descending)
	require.NoError(t, err)
	require.Equal(t, 1, series.Len())
	assert.Equal(t, "A", series.Points[0].Label)
	assert.Equal(t, "10.25", series.Points[0].Value.String())
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"12", "12", false},
		{" 3.5 ", "3.5", false},
		{"+4", "4", false},
		{"-2.25", "-2.25", false},
		{"1 250", "1250", false},
		{"", "", true},
		{"abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseNumber(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
