// Выгрузка инвентаря для каталогов: CSV и XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	excelize "github.com/xuri/excelize/v2"

	"appliance-recon/internal/inventory/model"
)

// Header: порядок колонок выгрузки.
var Header = []string{"technical_reference", "commercial_reference", "brand", "type", "part_reference"}

// Rows разворачивает инвентарь в строки прибор × референция запчасти.
// Прибор без связей даёт одну строку с пустой референцией.
func Rows(appliances []model.Appliance, assocs []model.AppliancePartAssociation) []model.ExportRow {
	parts := make(map[string][]string, len(appliances))
	for _, a := range assocs {
		parts[a.ApplianceID] = append(parts[a.ApplianceID], a.PartReference)
	}

	out := make([]model.ExportRow, 0, len(appliances))
	for _, a := range appliances {
		base := model.ExportRow{Reference: a.Reference, CommercialRef: a.CommercialRef, Brand: a.Brand, Type: a.Type}
		refs := parts[a.ID]
		if len(refs) == 0 {
			out = append(out, base)
			continue
		}
		for _, p := range refs {
			r := base
			r.PartReference = p
			out = append(out, r)
		}
	}
	return out
}

func record(r model.ExportRow) []string {
	return []string{r.Reference, r.CommercialRef, r.Brand, r.Type, r.PartReference}
}

// WriteCSV: стандартное экранирование кавычками (запятая, кавычка, перевод строки).
func WriteCSV(w io.Writer, rows []model.ExportRow, withHeader bool) error {
	cw := csv.NewWriter(w)
	if withHeader {
		if err := cw.Write(Header); err != nil {
			return err
		}
	}
	for _, r := range rows {
		if err := cw.Write(record(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX пишет одну вкладку с заголовком.
func WriteXLSX(w io.Writer, rows []model.ExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &Header); err != nil {
		return fmt.Errorf("xlsx header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		rec := record(r)
		if err := f.SetSheetRow(sheet, cell, &rec); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+2, err)
		}
	}
	_, err := f.WriteTo(w)
	return err
}
