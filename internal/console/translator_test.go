package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockMon/internal/domain/models"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		kind CommandKind
		args []string
	}{
		{line: "", kind: CmdEmpty},
		{line: "   ", kind: CmdEmpty},
		{line: "stocks", kind: CmdStocks, args: []string{}},
		{line: "alert abc 1 2", kind: CmdAlert, args: []string{"abc", "1", "2"}},
		{line: "alert abc 1", kind: CmdUnknown, args: []string{"abc", "1"}},
		{line: "remove abc", kind: CmdRemove, args: []string{"abc"}},
		{line: "remove", kind: CmdUnknown, args: []string{}},
		{line: "list", kind: CmdList, args: []string{}},
		{line: "showprices", kind: CmdShowPrices, args: []string{}},
		{line: "QUIT", kind: CmdQuit, args: []string{}},
		{line: "dance", kind: CmdUnknown, args: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd := Parse(tt.line)
			assert.Equal(t, tt.kind, cmd.Kind)
			assert.Equal(t, tt.line, cmd.Raw)
			if tt.args != nil {
				assert.Equal(t, tt.args, cmd.Args)
			}
		})
	}
}

func TestTranslator_SetAlert(t *testing.T) {
	vm := newVMStub()
	vm.prices["ABC"] = models.StockPrice{Code: "ABC", Price: 150}
	tr := NewTranslator(vm)

	msg, err := tr.SetAlert([]string{"abc", "100", "200.5"})
	require.NoError(t, err)
	assert.Equal(t, "Alert set for ABC: lower=100 upper=200.5", msg)
	assert.Equal(t, []models.AlertRequest{{Code: "ABC", Lower: 100, Upper: 200.5}}, vm.sets)
	assert.Empty(t, vm.settings, "translator never mutates alert state")
}

func TestTranslator_SetAlertInvalidValues(t *testing.T) {
	vm := newVMStub()
	vm.prices["XYZ"] = models.StockPrice{Code: "XYZ", Price: 5}
	tr := NewTranslator(vm)

	_, err := tr.SetAlert([]string{"XYZ", "abc", "10"})
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "Invalid price values", err.Error())
	assert.Equal(t, "abc", inputErr.Input)

	_, err = tr.SetAlert([]string{"XYZ", "1", "ten"})
	assert.ErrorAs(t, err, &inputErr)
	assert.Empty(t, vm.sets)
}

func TestTranslator_SetAlertUnknownCode(t *testing.T) {
	vm := newVMStub()
	tr := NewTranslator(vm)

	_, err := tr.SetAlert([]string{"nope", "1", "2"})
	var unknown *UnknownCodeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Unknown stock code: NOPE", err.Error())
	assert.Empty(t, vm.sets)
}

func TestTranslator_RemoveAlert(t *testing.T) {
	vm := newVMStub()
	vm.settings["ABC"] = models.NewAlertSetting("ABC", 1, 2)
	tr := NewTranslator(vm)

	msg, err := tr.RemoveAlert([]string{"xyz"})
	require.NoError(t, err)
	assert.Empty(t, msg)
	assert.Empty(t, vm.removes)

	msg, err = tr.RemoveAlert([]string{"abc"})
	require.NoError(t, err)
	assert.Equal(t, "Alert removed for ABC", msg)
	assert.Equal(t, []string{"ABC"}, vm.removes)
}
