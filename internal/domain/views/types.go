// Package views derives the three dashboard views from the attrition dataset.
//
// Every function here is a pure aggregation over a read-only slice: no
// function mutates its input and results never alias it.
package views

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// AttritionCount is one bar of the attrition-by-role chart.
type AttritionCount struct {
	JobRole   string `json:"jobRole"`
	Attrition string `json:"attrition"`
	Count     int    `json:"count"`
}

// DepartmentRevenue is one bar of the revenue-loss chart.
type DepartmentRevenue struct {
	Department  string
	RevenueLoss decimal.Decimal
	// Highlighted marks the currently selected department.
	Highlighted bool
}

type departmentRevenueJSON struct {
	Department  string      `json:"department"`
	RevenueLoss json.Number `json:"revenueLoss"`
	Highlighted bool        `json:"highlighted"`
}

// MarshalJSON renders the exact sum as a JSON number.
func (d DepartmentRevenue) MarshalJSON() ([]byte, error) {
	return json.Marshal(departmentRevenueJSON{d.Department, json.Number(d.RevenueLoss.String()), d.Highlighted})
}

// UnmarshalJSON reads the sum back without going through float64.
func (d *DepartmentRevenue) UnmarshalJSON(data []byte) error {
	var raw departmentRevenueJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	loss := decimal.Zero
	if raw.RevenueLoss != "" {
		var err error
		if loss, err = decimal.NewFromString(raw.RevenueLoss.String()); err != nil {
			return fmt.Errorf("revenueLoss: %w", err)
		}
	}
	*d = DepartmentRevenue{Department: raw.Department, RevenueLoss: loss, Highlighted: raw.Highlighted}
	return nil
}

// Heatmap holds mean tenure per (job role, department) cell.
// Cells[i][j] belongs to JobRoles[i] x Departments[j] and is nil when no
// record falls in that cell.
type Heatmap struct {
	JobRoles    []string     `json:"jobRoles"`
	Departments []string     `json:"departments"`
	Cells       [][]*float64 `json:"cells"`
}

// Mean returns the cell value for role and dept.
func (h Heatmap) Mean(role, dept string) (float64, bool) {
	i := indexOf(h.JobRoles, role)
	j := indexOf(h.Departments, dept)
	if i < 0 || j < 0 || h.Cells[i][j] == nil {
		return 0, false
	}
	return *h.Cells[i][j], true
}

// Empty reports whether the heatmap has no rows.
func (h Heatmap) Empty() bool { return len(h.JobRoles) == 0 }

// Views is the complete result of one dashboard refresh.
type Views struct {
	// Department is the applied filter; empty means all departments.
	Department string `json:"department"`
	// FilterMiss is set when Department does not occur in the data.
	FilterMiss bool `json:"filterMiss"`

	AttritionByRole     []AttritionCount    `json:"attritionByRole"`
	RevenueByDepartment []DepartmentRevenue `json:"revenueByDepartment"`
	TenureHeatmap       Heatmap             `json:"tenureHeatmap"`
}

// Err returns ErrFilterMiss when the filter matched nothing.
func (v Views) Err() error {
	if v.FilterMiss {
		return ErrFilterMiss
	}
	return nil
}

func indexOf(values []string, v string) int {
	for i, s := range values {
		if s == v {
			return i
		}
	}
	return -1
}
