package views

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/okian/attrition/internal/domain/model"
)

// Derive computes all three views for the selected department. An empty
// department selects every record.
func Derive(records []model.Employee, department string) Views {
	filtered := Filter(records, department)

	return Views{
		Department:          department,
		FilterMiss:          department != "" && len(filtered) == 0,
		AttritionByRole:     AttritionByRole(filtered),
		RevenueByDepartment: RevenueByDepartment(records, department),
		TenureHeatmap:       TenureHeatmap(filtered),
	}
}

// Filter returns the records of department, or all records when department
// is empty. The result never aliases records.
func Filter(records []model.Employee, department string) []model.Employee {
	out := make([]model.Employee, 0, len(records))
	for _, r := range records {
		if department == "" || r.Department == department {
			out = append(out, r)
		}
	}
	return out
}

// AttritionByRole counts records per (JobRole, Attrition), ordered by role
// then attrition label.
func AttritionByRole(records []model.Employee) []AttritionCount {
	type key struct{ role, attrition string }
	counts := make(map[key]int)
	for _, r := range records {
		counts[key{r.JobRole, r.Attrition}]++
	}

	out := make([]AttritionCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, AttritionCount{JobRole: k.role, Attrition: k.attrition, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JobRole != out[j].JobRole {
			return out[i].JobRole < out[j].JobRole
		}
		return out[i].Attrition < out[j].Attrition
	})
	return out
}

// RevenueByDepartment sums RevenueLoss per department over every record,
// whatever the selection, so all departments stay comparable. The selected
// department, if present, is flagged Highlighted.
func RevenueByDepartment(records []model.Employee, selected string) []DepartmentRevenue {
	sums := make(map[string]decimal.Decimal)
	for _, r := range records {
		total, ok := sums[r.Department]
		if !ok {
			total = decimal.Zero
		}
		sums[r.Department] = total.Add(r.RevenueLoss)
	}

	out := make([]DepartmentRevenue, 0, len(sums))
	for dept, total := range sums {
		out = append(out, DepartmentRevenue{
			Department:  dept,
			RevenueLoss: total,
			Highlighted: selected != "" && dept == selected,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out
}

// TenureHeatmap averages YearsAtCompany per (JobRole, Department). Rows and
// columns list only values present in records, sorted ascending.
func TenureHeatmap(records []model.Employee) Heatmap {
	type cell struct{ role, dept string }
	type acc struct {
		sum float64
		n   int
	}
	cells := make(map[cell]*acc)
	roleSet := make(map[string]struct{})
	deptSet := make(map[string]struct{})

	for _, r := range records {
		k := cell{r.JobRole, r.Department}
		a, ok := cells[k]
		if !ok {
			a = &acc{}
			cells[k] = a
		}
		a.sum += r.YearsAtCompany
		a.n++
		roleSet[r.JobRole] = struct{}{}
		deptSet[r.Department] = struct{}{}
	}

	h := Heatmap{
		JobRoles:    sortedKeys(roleSet),
		Departments: sortedKeys(deptSet),
	}
	h.Cells = make([][]*float64, len(h.JobRoles))
	for i, role := range h.JobRoles {
		h.Cells[i] = make([]*float64, len(h.Departments))
		for j, dept := range h.Departments {
			if a, ok := cells[cell{role, dept}]; ok {
				mean := a.sum / float64(a.n)
				h.Cells[i][j] = &mean
			}
		}
	}
	return h
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
