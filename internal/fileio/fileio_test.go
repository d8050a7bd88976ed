package fileio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	excelize "github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func TestReadAnyRows_CSVSemicolon(t *testing.T) {
	in := "\ufeffRéférence;Marque;Type\nWAT28400FF;Bosch;Lave-linge\n\n\"EWT;1062\";Electrolux;Lave-linge\n"
	rows, err := ReadAnyRows(strings.NewReader(in), "export.CSV")
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Référence", "Marque", "Type"}, rows[0])
	assert.Equal(t, "EWT;1062", rows[2][0])
}

func TestReadAnyRows_CSVWindows1252(t *testing.T) {
	text := "Type,Marque,Référence,Réf commerciale\n" +
		"Réfrigérateur,Bosch,KGN39VLEA,Série 4 combiné réfrigérateur congélateur\n" +
		"Lave-vaisselle,Siemens,SN236I00ME,Lave-vaisselle intégrable à façade\n" +
		"Four,Bosch,HBA534BS0,Four encastrable pyrolyse chaleur tournante 3D élégant\n"
	enc, err := charmap.Windows1252.NewEncoder().String(text)
	require.NoError(t, err)

	rows, err := ReadAnyRows(strings.NewReader(enc), "legacy.csv")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Réfrigérateur", rows[1][0])
	assert.Len(t, rows[1], 4)
}

func TestReadAnyRows_TSV(t *testing.T) {
	rows, err := ReadAnyRows(strings.NewReader("REF1\tCOMM1\nREF2\t COMM2 \n"), "paste.txt")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"REF2", "COMM2"}, rows[1])
}

func TestReadAnyRows_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]string{"Four", "Bosch", "XYZ2", "C2"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]string{"Four", "Siemens", "XYZ3", "C3"}))
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	f.Close()

	rows, err := ReadAnyRows(&buf, "stock.xlsx")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Four", "Siemens", "XYZ3", "C3"}, rows[1])
}

func TestReadAnyRows_Unsupported(t *testing.T) {
	_, err := ReadAnyRows(strings.NewReader("x"), "photo.png")
	assert.Error(t, err)
}

func TestSniffDelimiter(t *testing.T) {
	assert.Equal(t, ';', sniffDelimiter([]byte("a;b;c\n1,2")))
	assert.Equal(t, '\t', sniffDelimiter([]byte("a\tb")))
	assert.Equal(t, ',', sniffDelimiter([]byte("single")))
}
