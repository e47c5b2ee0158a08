package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCatalog = `
locations: ["Lima", "Arequipa"]
reports:
  - name: ventas
    file_name: ventas.csv
    separator: ";"
    normalize: true
    relevant_columns: ["Fecha", "Locación", "Producto", "Venta CF"]
    date_column: Fecha
    charts:
      - group_by: ["Producto"]
        indicator: Venta CF
        kind: pareto
        top_n: 10
        style:
          colors: ["#1f77b4"]
`

func TestParseCatalog(t *testing.T) {
	catalog, err := ParseCatalog([]byte(validCatalog))
	require.NoError(t, err)

	assert.Equal(t, []string{"ventas"}, catalog.Names())
	assert.Equal(t, []string{"Lima", "Arequipa"}, catalog.Locations)

	report, ok := catalog.Report("ventas")
	require.True(t, ok)
	assert.Equal(t, ';', report.SeparatorRune())
	assert.Equal(t, []string{DefaultDateLayout}, report.Layouts())
	assert.Equal(t, ChartPareto, report.Charts[0].Kind)

	_, ok = catalog.Report("missing")
	assert.False(t, ok)
}

func TestParseCatalogErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "no reports",
			yaml:    "reports: []\n",
			wantErr: "invalid report catalog",
		},
		{
			name: "unknown kind",
			yaml: `
reports:
  - name: a
    file_name: a.csv
    relevant_columns: [Fecha, X]
    date_column: Fecha
    charts:
      - {group_by: [X], indicator: X, kind: radar}
`,
			wantErr: "invalid report catalog",
		},
		{
			name: "date column not projected",
			yaml: `
reports:
  - name: a
    file_name: a.csv
    relevant_columns: [X]
    date_column: Fecha
    charts:
      - {group_by: [X], indicator: X, kind: bar}
`,
			wantErr: "date column",
		},
		{
			name: "indicator not projected",
			yaml: `
reports:
  - name: a
    file_name: a.csv
    relevant_columns: [Fecha, X]
    date_column: Fecha
    charts:
      - {group_by: [X], indicator: Y, kind: bar}
`,
			wantErr: `column "Y"`,
		},
		{
			name: "bad color",
			yaml: `
reports:
  - name: a
    file_name: a.csv
    relevant_columns: [Fecha, X]
    date_column: Fecha
    charts:
      - {group_by: [X], indicator: X, kind: bar, style: {colors: [blue]}}
`,
			wantErr: "invalid report catalog",
		},
		{
			name: "duplicate name",
			yaml: `
reports:
  - {name: a, file_name: a.csv, relevant_columns: [F], date_column: F, charts: [{group_by: [F], indicator: F, kind: bar}]}
  - {name: a, file_name: b.csv, relevant_columns: [F], date_column: F, charts: [{group_by: [F], indicator: F, kind: bar}]}
`,
			wantErr: "duplicate report",
		},
		{
			name: "top_n_filter with two group_by columns",
			yaml: `
reports:
  - {name: a, file_name: a.csv, relevant_columns: [F, G, X], date_column: F, charts: [{group_by: [F, G], indicator: X, kind: bar, top_n_filter: 3}]}
`,
			wantErr: "top_n_filter",
		},
		{
			name:    "unknown field",
			yaml:    "reprots: []\n",
			wantErr: "failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadCatalogFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "reports.yaml", validCatalog)
	catalog, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Len(t, catalog.Reports, 1)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
