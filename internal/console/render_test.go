package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"StockMon/internal/domain/models"
)

func TestLiveAlerts_UpperCrossed(t *testing.T) {
	prices := models.PriceMap{"ABC": {Code: "ABC", Price: 210}}
	settings := map[string]models.AlertSetting{"ABC": {Code: "ABC", Lower: ptr(100), Upper: ptr(200)}}

	assert.Equal(t, []string{"ABC price ($210.00) above $200.00"}, LiveAlerts(prices, settings))
}

func TestLiveAlerts_ZeroBoundIsUnset(t *testing.T) {
	prices := models.PriceMap{"XYZ": {Code: "XYZ", Price: 5}}
	settings := map[string]models.AlertSetting{"XYZ": {Code: "XYZ", Lower: ptr(0), Upper: ptr(10)}}

	assert.Empty(t, LiveAlerts(prices, settings))

	settings["XYZ"] = models.AlertSetting{Code: "XYZ", Lower: ptr(6), Upper: ptr(0)}
	assert.Equal(t, []string{"XYZ price ($5.00) below $6.00"}, LiveAlerts(prices, settings))
}

func TestRenderer_LivePricesSortedWithAlerts(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, false)
	prices := models.PriceMap{
		"MSFT": {Price: 300, Change: -1.25},
		"ABC":  {Price: 210, Change: 5},
	}
	r.LivePrices(prices, map[string]models.AlertSetting{"ABC": models.NewAlertSetting("ABC", 100, 200)})

	out := buf.String()
	assert.Contains(t, out, "ABC $210.00 (+5.00%)\nMSFT $300.00 (-1.25%)\n")
	assert.Contains(t, out, "Alerts:\nABC price ($210.00) above $200.00")
}

func TestRenderer_LivePricesNoAlerts(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf, false).LivePrices(models.PriceMap{"ABC": {Price: 1}}, nil)
	assert.NotContains(t, buf.String(), "Alerts:")
	assert.Contains(t, buf.String(), "ABC $1.00 (+0.00%)")
}

func TestRenderer_Stocks(t *testing.T) {
	var buf bytes.Buffer
	desc := map[string]string{"AAPL": "Apple Inc.", "MSFT": "Microsoft Corporation", "NOPX": "No Price"}
	prices := models.PriceMap{
		"AAPL": {Price: 187.25, Change: 1.5},
		"MSFT": {Price: 410, Change: -0.25},
	}
	NewRenderer(&buf, false).Stocks(desc, prices)

	out := buf.String()
	assert.Contains(t, out, "Company Name")
	assert.Contains(t, out, "Apple Inc.")
	assert.Contains(t, out, "$187.25")
	assert.Contains(t, out, "-0.25%")
	assert.NotContains(t, out, "No Price")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("AAPL")), bytes.Index(buf.Bytes(), []byte("MSFT")))
}

func TestRenderer_AlertList(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, false)
	r.AlertList(nil)
	assert.Contains(t, buf.String(), "No alerts set")

	buf.Reset()
	r.AlertList(map[string]models.AlertSetting{
		"XYZ": models.NewAlertSetting("XYZ", 0, 10),
		"ABC": models.NewAlertSetting("ABC", 1, 2),
	})
	assert.Contains(t, buf.String(), "ABC lower=1.00 upper=2.00\nXYZ lower=0.00 upper=10.00\n")
}

func TestRenderer_MenuEndsWithSingleNewline(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, false)
	r.Menu()
	r.Prompt("Command> ")

	s := buf.String()
	assert.True(t, strings.HasPrefix(s, "\n===== MENU =====\n"))
	assert.True(t, strings.HasSuffix(s, "================\nCommand> "))
}
