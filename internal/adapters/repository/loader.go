package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/okian/attrition/internal/domain/model"
	"github.com/okian/attrition/pkg/metrics"
)

const utf8BOM = "\uFEFF"

// Load reads the dataset at path. Any failure is a *LoadError.
func Load(ctx context.Context, path string, opts ...Option) (*MemoryStore, error) {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		kind := ErrMalformed
		if errors.Is(err, fs.ErrNotExist) {
			kind = ErrNotFound
		}
		return nil, &LoadError{Source: path, Kind: kind, Err: err}
	}
	defer func() { _ = f.Close() }()

	opts = append([]Option{WithSourceName(path)}, opts...)
	store, err := Parse(ctx, f, opts...)
	if err != nil {
		return nil, err
	}

	metrics.RecordDatasetLoadLatency(float64(time.Since(start).Milliseconds()))
	return store, nil
}

// Parse reads a delimited dataset with a header row from r.
func Parse(ctx context.Context, r io.Reader, opts ...Option) (*MemoryStore, error) {
	o := defaultLoadOptions()
	for _, opt := range opts {
		opt(&o)
	}
	fail := func(line int, kind error, detail string, cause error) error {
		return &LoadError{Source: o.name, Line: line, Kind: kind, Detail: detail, Err: cause}
	}

	reader := csv.NewReader(r)
	reader.Comma = o.comma
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fail(1, ErrMalformed, "empty file, header row expected", nil)
	}
	if err != nil {
		return nil, fail(lineOf(err), ErrMalformed, "unreadable header", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, fail(1, ErrMissingColumn, err.Error(), nil)
	}

	var rows []model.Employee
	for {
		if err := ctx.Err(); err != nil {
			return nil, fail(0, ErrMalformed, "parse interrupted", err)
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fail(lineOf(err), ErrMalformed, "unreadable row", err)
		}
		line, _ := reader.FieldPos(0)

		emp, err := cols.employee(record)
		if err != nil {
			return nil, fail(line, ErrMalformed, err.Error(), nil)
		}
		rows = append(rows, emp)
	}

	return NewMemoryStore(rows, o.now()), nil
}

// columns holds the index of each required field within a row.
type columns struct {
	department, jobRole, attrition, revenueLoss, years int
}

func mapColumns(header []string) (columns, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		h = strings.TrimSpace(h)
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	var missing []string
	lookup := func(name string) int {
		i, ok := index[name]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}

	c := columns{
		department:  lookup(model.ColumnDepartment),
		jobRole:     lookup(model.ColumnJobRole),
		attrition:   lookup(model.ColumnAttrition),
		revenueLoss: lookup(model.ColumnRevenueLoss),
		years:       lookup(model.ColumnYearsAtCompany),
	}
	if len(missing) > 0 {
		return columns{}, errors.New(strings.Join(missing, ", "))
	}
	return c, nil
}

func (c columns) employee(record []string) (model.Employee, error) {
	field := func(i int) string { return strings.TrimSpace(record[i]) }

	loss, err := decimal.NewFromString(field(c.revenueLoss))
	if err != nil {
		return model.Employee{}, fmt.Errorf("%s %q is not a number", model.ColumnRevenueLoss, field(c.revenueLoss))
	}

	years, err := strconv.ParseFloat(field(c.years), 64)
	if err != nil || math.IsNaN(years) || math.IsInf(years, 0) {
		return model.Employee{}, fmt.Errorf("%s %q is not a finite number", model.ColumnYearsAtCompany, field(c.years))
	}

	return model.Employee{
		Department:     field(c.department),
		JobRole:        field(c.jobRole),
		Attrition:      field(c.attrition),
		RevenueLoss:    loss,
		YearsAtCompany: years,
	}, nil
}

func lineOf(err error) int {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return perr.Line
	}
	return 0
}
