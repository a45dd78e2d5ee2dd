package report

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"fintrack/internal/core"
)

const (
	NoExpensesText     = "No expenses yet"
	NoTransactionsText = "No transactions yet"
)

// Data is the input of RenderChart. Pie and bar charts read Categories,
// area charts read Trend.
type Data struct {
	Title      string
	Categories []core.CategoryAmount
	Trend      core.BalanceTrend
}

// Chart is a rendered chart ready to be written to a response.
type Chart struct {
	Data     []byte
	MIMEType string
	Ext      string
}

// RenderChart draws d as the requested kind and encodes it in format.
func RenderChart(d Data, kind Kind, format Format) (Chart, error) {
	var (
		p    *plot.Plot
		w, h vg.Length
		err  error
	)
	switch kind {
	case Pie:
		p, err = pieChart(d)
		w, h = 8*vg.Inch, 8*vg.Inch
	case Area:
		p, err = areaChart(d)
		w, h = 10*vg.Inch, 6*vg.Inch
	case Bar:
		p, err = barChart(d)
		w, h = 10*vg.Inch, 6*vg.Inch
	default:
		return Chart{}, fmt.Errorf("unsupported chart kind %q", kind)
	}
	if err != nil {
		return Chart{}, fmt.Errorf("build %s chart: %w", kind, err)
	}

	switch format {
	case PNG, JPEG, PDF:
	default:
		return Chart{}, fmt.Errorf("unsupported chart format %q", format)
	}

	wt, err := p.WriterTo(w, h, string(format))
	if err != nil {
		return Chart{}, fmt.Errorf("encode %s chart as %s: %w", kind, format, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return Chart{}, fmt.Errorf("write %s chart: %w", kind, err)
	}

	return Chart{Data: buf.Bytes(), MIMEType: format.MIMEType(), Ext: format.Ext()}, nil
}

// message places centered text on an otherwise empty plot.
func message(p *plot.Plot, lines string) error {
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	lbl, err := centeredLabels([]plotter.XY{{X: 0.5, Y: 0.5}}, []string{lines})
	if err != nil {
		return err
	}
	p.Add(lbl)
	return nil
}

func centeredLabels(xys []plotter.XY, labels []string) (*plotter.Labels, error) {
	lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return nil, err
	}
	for i := range lbl.TextStyle {
		lbl.TextStyle[i].XAlign = text.XCenter
		lbl.TextStyle[i].YAlign = text.YCenter
	}
	return lbl, nil
}

func pieChart(d Data) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = d.Title
	p.HideAxes()

	var total core.Money
	for _, c := range d.Categories {
		total = total.Add(c.Amount)
	}
	if len(d.Categories) == 0 || total.IsZero() {
		p.Title.Text = ""
		return p, message(p, NoExpensesText)
	}

	wedges := &pieWedges{}
	var (
		nameXYs []plotter.XY
		names   []string
		pctXYs  []plotter.XY
		pcts    []string
	)
	// Start at 12 o'clock and sweep counterclockwise.
	angle := math.Pi / 2
	for i, c := range d.Categories {
		sweep := 2 * math.Pi * c.Amount.Float() / total.Float()
		wedges.add(angle, sweep, plotutil.Color(i))

		mid := angle + sweep/2
		nameXYs = append(nameXYs, plotter.XY{X: 1.15 * math.Cos(mid), Y: 1.15 * math.Sin(mid)})
		names = append(names, c.Name)
		pctXYs = append(pctXYs, plotter.XY{X: 0.6 * math.Cos(mid), Y: 0.6 * math.Sin(mid)})
		pcts = append(pcts, core.Percent(c.Amount, total))

		angle += sweep
	}

	nameLabels, err := centeredLabels(nameXYs, names)
	if err != nil {
		return nil, err
	}
	pctLabels, err := centeredLabels(pctXYs, pcts)
	if err != nil {
		return nil, err
	}
	p.Add(wedges, nameLabels, pctLabels)
	return p, nil
}

type wedge struct {
	start, sweep float64
	color        color.Color
}

// pieWedges draws a unit-radius pie centered on the origin.
type pieWedges struct {
	wedges []wedge
}

func (pw *pieWedges) add(start, sweep float64, c color.Color) {
	pw.wedges = append(pw.wedges, wedge{start: start, sweep: sweep, color: c})
}

func (pw *pieWedges) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	center := vg.Point{X: trX(0), Y: trY(0)}
	radius := trX(1) - center.X
	if ry := trY(1) - center.Y; ry < radius {
		radius = ry
	}

	for _, w := range pw.wedges {
		var path vg.Path
		path.Move(center)
		path.Arc(center, radius, w.start, w.sweep)
		path.Close()
		c.SetColor(w.color)
		c.Fill(path)
	}
}

// DataRange leaves room around the unit circle for the category labels.
func (pw *pieWedges) DataRange() (xmin, xmax, ymin, ymax float64) {
	return -1.4, 1.4, -1.4, 1.4
}

func areaChart(d Data) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = d.Title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Balance"
	p.Add(plotter.NewGrid())

	current := d.Trend.Current.Float()
	switch {
	case d.Trend.Transactions == 0 || len(d.Trend.Points) == 0:
		p.HideAxes()
		return p, message(p, fmt.Sprintf("%s\nCurrent Balance: %s", NoTransactionsText, d.Trend.Current))

	case d.Trend.Transactions == 1:
		p.X.Min, p.X.Max = 0, 1
		p.Y.Min, p.Y.Max = current-1, current+1
		p.X.Tick.Marker = plot.ConstantTicks(nil)
		ref := plotter.NewFunction(func(float64) float64 { return current })
		ref.Color = color.RGBA{B: 255, A: 255}
		ref.Width = vg.Points(2)
		lbl, err := centeredLabels(
			[]plotter.XY{{X: 0.5, Y: current + 0.5}},
			[]string{"Current Balance: " + d.Trend.Current.String()},
		)
		if err != nil {
			return nil, err
		}
		p.Add(ref, lbl)
		return p, nil
	}

	xys := make(plotter.XYs, len(d.Trend.Points))
	for i, pt := range d.Trend.Points {
		xys[i].X = float64(pt.At.Unix())
		xys[i].Y = pt.Balance.Float()
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	line.Width = vg.Points(2)
	line.Color = plotutil.Color(0)
	line.FillColor = color.RGBA{R: 31, G: 119, B: 180, A: 77}
	p.Add(line)
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	return p, nil
}

func barChart(d Data) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = d.Title
	p.X.Label.Text = "Category"
	p.Y.Label.Text = "Amount"
	if len(d.Categories) == 0 {
		return p, nil
	}

	values := make(plotter.Values, len(d.Categories))
	names := make([]string, len(d.Categories))
	for i, c := range d.Categories {
		values[i] = c.Amount.Float()
		names[i] = c.Name
	}
	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return nil, err
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	return p, nil
}
