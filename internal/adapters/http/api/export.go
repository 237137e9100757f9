package api

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/attrition/internal/domain/views"
	"github.com/okian/attrition/pkg/logger"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

// ExportHandler streams the derived views as a CSV document.
type ExportHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps Dependencies, l logger.Logger) *ExportHandler {
	return &ExportHandler{deps: deps, logger: l}
}

// HandleExport handles GET /api/views/export.csv?department=X requests.
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_views"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	dept := departmentParam(r)
	id := h.deps.DatasetID()
	if id == "" {
		writeFailure(w, Wrap(op, ErrNotReady))
		return
	}
	v, err := h.deps.Views(r.Context(), dept)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		writeFailure(w, Wrap(op, err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="attrition-views.csv"`)
	w.WriteHeader(http.StatusOK)
	if err := WriteViewsCSV(w, id, v); err != nil {
		// Headers are already sent; all we can do is log.
		h.logger.Error(r.Context(), "csv export aborted", logger.String("department", dept), logger.Error(err))
	}
}

// WriteViewsCSV writes the three views as one CSV document. Each section
// starts with a "#" comment line and sections are separated by an empty row.
func WriteViewsCSV(w io.Writer, datasetID string, v views.Views) error {
	s := newCSVStreamer(w)

	selected := v.Department
	if selected == "" {
		selected = "All Departments"
	}
	for _, line := range []string{
		"# HR Attrition Dashboard",
		"# Dataset: " + datasetID,
		"# Department: " + selected,
	} {
		if err := s.writeComment(line); err != nil {
			return fmt.Errorf("%w: %w", ErrExport, err)
		}
	}
	if v.FilterMiss {
		if err := s.writeComment("# No records match the selected department"); err != nil {
			return fmt.Errorf("%w: %w", ErrExport, err)
		}
	}

	if err := writeSections(s, v); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	if err := s.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	return nil
}

func writeSections(s *csvStreamer, v views.Views) error {
	if err := s.section("Attrition by Job Role", []string{"JobRole", "Attrition", "Count"}); err != nil {
		return err
	}
	for _, c := range v.AttritionByRole {
		if err := s.writeRow([]string{c.JobRole, c.Attrition, strconv.Itoa(c.Count)}); err != nil {
			return err
		}
	}

	if err := s.writeRow([]string{""}); err != nil {
		return err
	}
	if err := s.section("Revenue Loss by Department", []string{"Department", "RevenueLoss", "Highlighted"}); err != nil {
		return err
	}
	for _, d := range v.RevenueByDepartment {
		if err := s.writeRow([]string{d.Department, d.RevenueLoss.String(), strconv.FormatBool(d.Highlighted)}); err != nil {
			return err
		}
	}

	if err := s.writeRow([]string{""}); err != nil {
		return err
	}
	hm := v.TenureHeatmap
	if err := s.section("Avg Tenure (YearsAtCompany) by Role x Dept", append([]string{"JobRole"}, hm.Departments...)); err != nil {
		return err
	}
	for i, role := range hm.JobRoles {
		row := make([]string, 0, len(hm.Departments)+1)
		row = append(row, role)
		for _, cell := range hm.Cells[i] {
			if cell == nil {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(*cell, 'f', -1, 64))
		}
		if err := s.writeRow(row); err != nil {
			return err
		}
	}
	return nil
}

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) section(title string, header []string) error {
	if err := s.writeComment("# " + title); err != nil {
		return err
	}
	return s.writeRow(header)
}

// writeComment emits a raw line. Pending CSV rows are flushed first so the
// comment lands in order.
func (s *csvStreamer) writeComment(line string) error {
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	line = strings.TrimRight(line, "\r\n") + "\r\n"
	_, err := s.buf.WriteString(line)
	return err
}

func (s *csvStreamer) writeRow(row []string) error {
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

func (s *csvStreamer) Close() error {
	return s.Flush()
}
