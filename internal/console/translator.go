package console

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"StockMon/internal/domain/models"
)

// ViewModel is the console's view of business state.
type ViewModel interface {
	CurrentPrices() models.PriceMap
	AlertSettings() map[string]models.AlertSetting
	EmitSetAlert(code string, lower, upper float64)
	EmitRemoveAlert(code string)
}

// InputError reports arguments that could not be parsed.
type InputError struct {
	Input string
	Err   error
}

func (e *InputError) Error() string { return "Invalid price values" }
func (e *InputError) Unwrap() error { return e.Err }

// UnknownCodeError reports a code with no current price.
type UnknownCodeError struct {
	Code string
}

func (e *UnknownCodeError) Error() string { return "Unknown stock code: " + e.Code }

// UnknownCommandError reports a line that is not a command.
type UnknownCommandError struct {
	Line string
}

func (e *UnknownCommandError) Error() string { return "Unknown command: " + e.Line }

// CommandKind identifies a parsed input line.
type CommandKind int

const (
	CmdEmpty CommandKind = iota
	CmdStocks
	CmdAlert
	CmdRemove
	CmdList
	CmdShowPrices
	CmdQuit
	CmdUnknown
)

// Command is one parsed input line.
type Command struct {
	Kind CommandKind
	Raw  string
	Args []string
}

// Parse splits line into a command. Commands with the wrong number of
// arguments are unknown.
func Parse(line string) Command {
	parts := strings.Fields(line)
	cmd := Command{Kind: CmdUnknown, Raw: line}
	if len(parts) == 0 {
		cmd.Kind = CmdEmpty
		return cmd
	}
	cmd.Args = parts[1:]

	switch strings.ToLower(parts[0]) {
	case "stocks":
		cmd.Kind = CmdStocks
	case "alert":
		if len(cmd.Args) == 3 {
			cmd.Kind = CmdAlert
		}
	case "remove":
		if len(cmd.Args) == 1 {
			cmd.Kind = CmdRemove
		}
	case "list":
		cmd.Kind = CmdList
	case "showprices":
		cmd.Kind = CmdShowPrices
	case "quit":
		cmd.Kind = CmdQuit
	}
	return cmd
}

// Translator turns alert commands into view model requests. It never
// changes alert state itself.
type Translator struct {
	vm ViewModel
}

func NewTranslator(vm ViewModel) *Translator {
	return &Translator{vm: vm}
}

// SetAlert handles "alert CODE LOWER UPPER". args holds the three arguments.
func (t *Translator) SetAlert(args []string) (string, error) {
	if len(args) != 3 {
		return "", &InputError{Input: strings.Join(args, " "), Err: fmt.Errorf("want 3 arguments, got %d", len(args))}
	}
	code := strings.ToUpper(args[0])
	lower, err := decimal.NewFromString(args[1])
	if err != nil {
		return "", &InputError{Input: args[1], Err: err}
	}
	upper, err := decimal.NewFromString(args[2])
	if err != nil {
		return "", &InputError{Input: args[2], Err: err}
	}
	if _, ok := t.vm.CurrentPrices()[code]; !ok {
		return "", &UnknownCodeError{Code: code}
	}

	t.vm.EmitSetAlert(code, lower.InexactFloat64(), upper.InexactFloat64())
	return fmt.Sprintf("Alert set for %s: lower=%s upper=%s", code, lower.String(), upper.String()), nil
}

// RemoveAlert handles "remove CODE". A code without an alert is ignored and
// yields an empty message.
func (t *Translator) RemoveAlert(args []string) (string, error) {
	if len(args) != 1 {
		return "", &InputError{Input: strings.Join(args, " "), Err: fmt.Errorf("want 1 argument, got %d", len(args))}
	}
	code := strings.ToUpper(args[0])
	if _, ok := t.vm.AlertSettings()[code]; !ok {
		return "", nil
	}
	t.vm.EmitRemoveAlert(code)
	return "Alert removed for " + code, nil
}
