package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	excelize "github.com/xuri/excelize/v2"

	"appliance-recon/internal/inventory/model"
)

func sample() ([]model.Appliance, []model.AppliancePartAssociation) {
	apps := []model.Appliance{
		{ID: "1", Reference: "XYZ1", CommercialRef: "Serie 6, blanc", Brand: "Bosch", Type: "Four"},
		{ID: "2", Reference: "XYZ2", Brand: "Bosch", Type: `Four "pyro"`},
	}
	assocs := []model.AppliancePartAssociation{
		{ApplianceID: "1", PartReference: "P100"},
		{ApplianceID: "1", PartReference: "P200"},
	}
	return apps, assocs
}

func TestRows(t *testing.T) {
	rows := Rows(sample())
	require.Len(t, rows, 3)
	assert.Equal(t, "P100", rows[0].PartReference)
	assert.Equal(t, "P200", rows[1].PartReference)
	assert.Equal(t, "XYZ2", rows[2].Reference)
	assert.Empty(t, rows[2].PartReference)
}

func TestWriteCSV_Quoting(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Rows(sample()), true))

	want := "technical_reference,commercial_reference,brand,type,part_reference\n" +
		"XYZ1,\"Serie 6, blanc\",Bosch,Four,P100\n" +
		"XYZ1,\"Serie 6, blanc\",Bosch,Four,P200\n" +
		"XYZ2,,Bosch,\"Four \"\"pyro\"\"\",\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, Rows(sample())))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "P200", rows[2][4])
}
