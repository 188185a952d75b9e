package console

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"StockMon/internal/domain/models"
)

const menuText = `
===== MENU =====
stocks               - List available stocks and prices
alert <code> <l> <u> - Set price alert
remove <code>        - Remove price alert
list                 - List alert settings
showprices           - Start showing price updates (press Enter to stop)
quit                 - Exit
================
`

// Renderer writes console output.
type Renderer struct {
	out    io.Writer
	errC   *color.Color
	alertC *color.Color
	infoC  *color.Color
	upC    *color.Color
	downC  *color.Color
}

// NewRenderer creates a renderer on out. colorize=false writes plain text.
func NewRenderer(out io.Writer, colorize bool) *Renderer {
	r := &Renderer{
		out:    out,
		errC:   color.New(color.FgRed),
		alertC: color.New(color.FgYellow, color.Bold),
		infoC:  color.New(color.FgCyan),
		upC:    color.New(color.FgGreen),
		downC:  color.New(color.FgRed),
	}
	for _, c := range []*color.Color{r.errC, r.alertC, r.infoC, r.upC, r.downC} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

func (r *Renderer) Menu() {
	fmt.Fprint(r.out, menuText)
}

func (r *Renderer) Prompt(p string) {
	fmt.Fprint(r.out, p)
}

func (r *Renderer) Message(msg string) {
	fmt.Fprintln(r.out, msg)
}

func (r *Renderer) Error(err error) {
	r.errC.Fprintln(r.out, err.Error())
}

// Stocks prints a table of every described code that has a price.
func (r *Renderer) Stocks(desc map[string]string, prices models.PriceMap) {
	fmt.Fprintln(r.out, "\nAvailable Stocks:")

	codes := make([]string, 0, len(desc))
	for code := range desc {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	table := tablewriter.NewWriter(r.out)
	table.SetHeader([]string{"Code", "Price", "Change", "Company Name"})
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetColumnSeparator("")
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, code := range codes {
		p, ok := prices[code]
		if !ok {
			continue
		}
		table.Append([]string{
			code,
			fmt.Sprintf("$%.2f", p.Price),
			fmt.Sprintf("%+.2f%%", p.Change),
			desc[code],
		})
	}
	table.Render()
}

// LivePrices renders one snapshot in live display mode.
func (r *Renderer) LivePrices(prices models.PriceMap, settings map[string]models.AlertSetting) {
	fmt.Fprintln(r.out, "Showing price updates (Press Enter to return to menu):")
	fmt.Fprintln(r.out, "\nCurrent Prices:")
	for _, code := range prices.Codes() {
		p := prices[code]
		line := PriceLine(code, p)
		switch {
		case p.Change > 0:
			r.upC.Fprintln(r.out, line)
		case p.Change < 0:
			r.downC.Fprintln(r.out, line)
		default:
			fmt.Fprintln(r.out, line)
		}
	}
	fmt.Fprintln(r.out, "\n(Press Enter to return to menu)")

	alerts := LiveAlerts(prices, settings)
	if len(alerts) == 0 {
		return
	}
	fmt.Fprintln(r.out, "\nAlerts:")
	for _, a := range alerts {
		r.alertC.Fprintln(r.out, a)
	}
}

// AlertList prints the cached alert settings.
func (r *Renderer) AlertList(settings map[string]models.AlertSetting) {
	if len(settings) == 0 {
		fmt.Fprintln(r.out, "No alerts set")
		return
	}
	codes := make([]string, 0, len(settings))
	for code := range settings {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	fmt.Fprintln(r.out, "\nAlert Settings:")
	for _, code := range codes {
		s := settings[code]
		fmt.Fprintf(r.out, "%s lower=%s upper=%s\n", code, bound(s.Lower), bound(s.Upper))
	}
}

// PriceLine formats one price as "CODE $PRICE (+CHANGE%)".
func PriceLine(code string, p models.StockPrice) string {
	return fmt.Sprintf("%s $%.2f (%+.2f%%)", code, p.Price, p.Change)
}

// LiveAlerts lists the alert lines for a snapshot. A zero bound counts as
// unset.
func LiveAlerts(prices models.PriceMap, settings map[string]models.AlertSetting) []string {
	var out []string
	for _, code := range prices.Codes() {
		s, ok := settings[code]
		if !ok {
			continue
		}
		price := prices[code].Price
		if lower, ok := s.LowerBound(); ok && price <= lower {
			out = append(out, fmt.Sprintf("%s price ($%.2f) below $%.2f", code, price, lower))
		}
		if upper, ok := s.UpperBound(); ok && price >= upper {
			out = append(out, fmt.Sprintf("%s price ($%.2f) above $%.2f", code, price, upper))
		}
	}
	return out
}

func bound(f *float64) string {
	if f == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *f)
}
