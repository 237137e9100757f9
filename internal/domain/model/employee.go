// Package model contains domain models passed between layers.
package model

import "github.com/shopspring/decimal"

// Attrition labels used by the cleaned dataset.
const (
	AttritionYes = "Yes"
	AttritionNo  = "No"
)

// Required column names of the attrition dataset.
const (
	ColumnDepartment     = "Department"
	ColumnJobRole        = "JobRole"
	ColumnAttrition      = "Attrition"
	ColumnRevenueLoss    = "RevenueLoss"
	ColumnYearsAtCompany = "YearsAtCompany"
)

// RequiredColumns lists the header names a dataset must carry.
var RequiredColumns = []string{
	ColumnDepartment,
	ColumnJobRole,
	ColumnAttrition,
	ColumnRevenueLoss,
	ColumnYearsAtCompany,
}

// Employee is one row of the attrition dataset.
type Employee struct {
	Department     string
	JobRole        string
	Attrition      string          // "Yes" or "No"; other labels are kept verbatim
	RevenueLoss    decimal.Decimal // monetary loss attributed to the departure
	YearsAtCompany float64
}

// Left reports whether the employee left the organization.
func (e Employee) Left() bool {
	return e.Attrition == AttritionYes
}
