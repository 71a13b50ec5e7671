package load

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adscope/creativerank/internal/config"
)

func writeExport(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	loader, err := NewLoader(config.Defaults().Load)
	require.NoError(t, err)
	return loader
}

const exportHeader = "Ad name ,Ads,Creative ID,Preview link,Amount spent (AUD),Impressions,Reach,Frequency,Clicks (all),Outbound clicks,Purchases,CTR (all),Purchase ROAS (return on ad spend),Video plays at 95%\n"

func TestLoadFile_CanonicalMapping(t *testing.T) {
	csv := exportHeader +
		"Summer Sale,123,c1,https://example.com/1,$1234.50,20000,15000,1.33,400,300,25,2.5,3.1,5000\n"
	path := writeExport(t, []byte(csv))

	records, err := newTestLoader(t).LoadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Summer Sale", rec.AdName)
	assert.Equal(t, "123", rec.AdID)
	assert.Equal(t, "c1", rec.CreativeID)
	assert.Equal(t, "https://example.com/1", rec.CreativeLink)
	assert.Equal(t, 1234.50, rec.Spend, "currency symbol and separators are stripped")
	assert.Equal(t, 20000.0, rec.Impressions)
	assert.Equal(t, 25.0, rec.Purchases)
	assert.Equal(t, 2.5, rec.CTRRaw)
	assert.Equal(t, 3.1, rec.ROAS)
	assert.Equal(t, 5000.0, rec.VideoPlays95)
}

func TestLoadFile_DropsRowsMissingIdentifiers(t *testing.T) {
	csv := exportHeader +
		",123,c1,link,100,2000,,,,,5,1.0,2.0,0\n" + // no ad name
		"No Spend,124,c2,link,,2000,,,,,5,1.0,2.0,0\n" + // no spend
		"Keeper,125,c3,link,100,2000,,,,,5,1.0,2.0,0\n"
	path := writeExport(t, []byte(csv))

	records, err := newTestLoader(t).LoadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Keeper", records[0].AdName)
}

func TestLoadFile_ExcludesAggregateAds(t *testing.T) {
	csv := exportHeader +
		"DPA Catalog,1,c,link,100,2000,,,,,5,1,2,0\n" +
		"dynamic retarget,2,c,link,100,2000,,,,,5,1,2,0\n" +
		"Ad Set - Sales All,3,c,link,100,2000,,,,,5,1,2,0\n" +
		"Real Creative,4,c,link,100,2000,,,,,5,1,2,0\n"
	path := writeExport(t, []byte(csv))

	records, err := newTestLoader(t).LoadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Real Creative", records[0].AdName)
}

func TestLoadFile_BadNumericsBecomeMissing(t *testing.T) {
	csv := exportHeader +
		"Odd Numbers,1,c,link,100,2000,n/a,--,,,abc,1,2,0\n"
	path := writeExport(t, []byte(csv))

	records, err := newTestLoader(t).LoadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.True(t, math.IsNaN(rec.Reach), "unparseable cell becomes missing")
	assert.True(t, math.IsNaN(rec.Frequency))
	assert.True(t, math.IsNaN(rec.Purchases))
	assert.Equal(t, 100.0, rec.Spend)
}

func TestLoadFile_Windows1252Fallback(t *testing.T) {
	// "Café" with a Windows-1252 e-acute, invalid as UTF-8.
	row := append([]byte("Caf"), 0xE9)
	content := []byte(exportHeader)
	content = append(content, row...)
	content = append(content, []byte(",1,c,link,100,2000,,,,,5,1,2,0\n")...)
	path := writeExport(t, content)

	records, err := newTestLoader(t).LoadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Café", records[0].AdName)
}

func TestLoadFile_UTF8BOM(t *testing.T) {
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte(exportHeader+"BOM Ad,1,c,link,100,2000,,,,,5,1,2,0\n")...)
	path := writeExport(t, content)

	records, err := newTestLoader(t).LoadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "BOM Ad", records[0].AdName)
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := newTestLoader(t).LoadFile(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}
