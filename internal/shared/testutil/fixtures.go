package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// LostSalesCSV is a small semicolon-separated export with the thousands
// commas and decimal semicolons the normalizer rewrites.
const LostSalesCSV = "\uFEFFFecha;Locación;Cliente;Motivo;Venta Perdida CF;Vendedor\n" +
	"01/03/2024;Lima;Bodega Sur;Sin stock;1,200;Ana\n" +
	"01/03/2024;Lima;Bodega Norte;Precio;300;Luis\n" +
	"02/03/2024;Arequipa;Bodega Sur;Sin stock;0;Ana\n" +
	"15/03/2024;Cusco;Market 1;Precio;75;Rosa\n" +
	"02/04/2024;Lima;Bodega Sur;Sin stock;50;Ana\n"

// CatalogYAML is a catalog with one report over LostSalesCSV.
const CatalogYAML = `
locations: ["Lima", "Arequipa", "Cusco"]
reports:
  - name: venta_perdida
    file_name: venta_perdida.csv
    separator: ";"
    normalize: true
    relevant_columns: ["Fecha", "Locación", "Cliente", "Motivo", "Venta Perdida CF"]
    date_column: Fecha
    charts:
      - {group_by: ["Cliente"], indicator: "Venta Perdida CF", kind: bar}
      - {group_by: ["Motivo"], indicator: "Venta Perdida CF", kind: pie}
`

// MultiReportCatalogYAML adds a second report over the same export whose
// chart files do not collide with the first report's.
const MultiReportCatalogYAML = CatalogYAML + `
  - name: vendedores
    file_name: venta_perdida.csv
    separator: ";"
    normalize: true
    relevant_columns: ["Fecha", "Locación", "Cliente", "Vendedor", "Venta Perdida CF"]
    date_column: Fecha
    charts:
      - {group_by: ["Vendedor"], indicator: "Venta Perdida CF", kind: lollipop}
      - {group_by: ["Cliente"], indicator: "Venta Perdida CF", kind: pareto}
`

// WriteFile writes content under dir and returns the full path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
