package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/okian/attrition/internal/domain/views"
)

const (
	allDepartments = "All Departments"
	absentCell     = "-"
	highlightMark  = "*"
)

// Renderer prints views as console tables with locale-aware numbers.
type Renderer struct {
	printer *message.Printer
}

// NewRenderer creates a Renderer for tag; the zero tag means English.
func NewRenderer(tag language.Tag) *Renderer {
	if tag == language.Und {
		tag = language.English
	}
	return &Renderer{printer: message.NewPrinter(tag)}
}

// Views writes the three views as titled tables.
func (r *Renderer) Views(w io.Writer, v views.Views) error {
	selected := v.Department
	if selected == "" {
		selected = allDepartments
	}
	if _, err := fmt.Fprintf(w, "HR Attrition Dashboard: %s\n", selected); err != nil {
		return err
	}
	if v.FilterMiss {
		if _, err := fmt.Fprintln(w, "No records match the selected department."); err != nil {
			return err
		}
	}

	if err := r.section(w, "Attrition by Job Role"); err != nil {
		return err
	}
	t := newTable(w, []string{"JobRole", "Attrition", "Count"})
	for _, c := range v.AttritionByRole {
		t.Append([]string{c.JobRole, c.Attrition, r.printer.Sprintf("%d", c.Count)})
	}
	t.Render()

	if err := r.section(w, "Revenue Loss by Department"); err != nil {
		return err
	}
	t = newTable(w, []string{"Department", "RevenueLoss", ""})
	for _, d := range v.RevenueByDepartment {
		mark := ""
		if d.Highlighted {
			mark = highlightMark
		}
		t.Append([]string{d.Department, r.printer.Sprintf("%.2f", d.RevenueLoss.InexactFloat64()), mark})
	}
	t.Render()

	if err := r.section(w, "Avg Tenure (YearsAtCompany) by Role x Dept"); err != nil {
		return err
	}
	hm := v.TenureHeatmap
	t = newTable(w, append([]string{"JobRole"}, hm.Departments...))
	for i, role := range hm.JobRoles {
		row := make([]string, 0, len(hm.Departments)+1)
		row = append(row, role)
		for _, cell := range hm.Cells[i] {
			if cell == nil {
				row = append(row, absentCell)
				continue
			}
			row = append(row, r.printer.Sprintf("%.2f", *cell))
		}
		t.Append(row)
	}
	t.Render()
	return nil
}

// Departments writes one department per row.
func (r *Renderer) Departments(w io.Writer, departments []string) {
	t := newTable(w, []string{"Department"})
	for _, d := range departments {
		t.Append([]string{d})
	}
	t.Render()
}

func (r *Renderer) section(w io.Writer, title string) error {
	_, err := fmt.Fprintf(w, "\n%s\n", title)
	return err
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetHeader(header)
	return t
}
