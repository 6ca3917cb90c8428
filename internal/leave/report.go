package leave

import (
	"sort"
	"time"
)

const (
	TrendMonths          = 6
	TopEmployeeLimit     = 5
	UnassignedDepartment = "Unassigned"
)

type Counts struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Pending  int `json:"pending"`
	Rejected int `json:"rejected"`
}

func (c *Counts) add(status Status) {
	c.Total++
	switch status {
	case StatusApproved:
		c.Approved++
	case StatusPending:
		c.Pending++
	case StatusRejected:
		c.Rejected++
	}
}

type MonthTrend struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Label string     `json:"label"`
	Counts
}

type EmployeeSummary struct {
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
	Counts
}

type DepartmentSummary struct {
	Name string `json:"name"`
	Counts
}

// Report is a read-only projection over a set of leave requests.
type Report struct {
	GeneratedAt  time.Time           `json:"generatedAt"`
	Status       Counts              `json:"status"`
	ByType       map[Type]int        `json:"byType"`
	Trend        []MonthTrend        `json:"trend"`
	TopEmployees []EmployeeSummary   `json:"topEmployees"`
	Departments  []DepartmentSummary `json:"departments"`
}

// BuildReport aggregates requests. departments maps employee id to department name;
// employees missing from it are grouped as Unassigned.
func BuildReport(requests []*LeaveRequest, departments map[string]string, now time.Time) Report {
	report := Report{
		GeneratedAt: now,
		ByType:      map[Type]int{TypePaid: 0, TypeUnpaid: 0},
		Trend:       make([]MonthTrend, 0, TrendMonths),
	}

	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := TrendMonths - 1; i >= 0; i-- {
		m := firstOfMonth.AddDate(0, -i, 0)
		report.Trend = append(report.Trend, MonthTrend{
			Year:  m.Year(),
			Month: m.Month(),
			Label: m.Format("Jan 2006"),
		})
	}

	employees := make(map[string]*EmployeeSummary)
	employeeOrder := make([]string, 0)
	depts := make(map[string]*DepartmentSummary)

	for _, l := range requests {
		report.Status.add(l.Status)
		report.ByType[l.Type]++

		created := l.CreatedAt.In(now.Location())
		for i := range report.Trend {
			if report.Trend[i].Year == created.Year() && report.Trend[i].Month == created.Month() {
				report.Trend[i].add(l.Status)
				break
			}
		}

		emp, ok := employees[l.EmployeeID]
		if !ok {
			emp = &EmployeeSummary{EmployeeID: l.EmployeeID, Name: l.EmployeeName}
			employees[l.EmployeeID] = emp
			employeeOrder = append(employeeOrder, l.EmployeeID)
		}
		emp.add(l.Status)

		deptName := departments[l.EmployeeID]
		if deptName == "" {
			deptName = UnassignedDepartment
		}
		dept, ok := depts[deptName]
		if !ok {
			dept = &DepartmentSummary{Name: deptName}
			depts[deptName] = dept
		}
		dept.add(l.Status)
	}

	ranked := make([]EmployeeSummary, 0, len(employeeOrder))
	for _, id := range employeeOrder {
		ranked = append(ranked, *employees[id])
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Total > ranked[j].Total })
	if len(ranked) > TopEmployeeLimit {
		ranked = ranked[:TopEmployeeLimit]
	}
	report.TopEmployees = ranked

	report.Departments = make([]DepartmentSummary, 0, len(depts))
	for _, d := range depts {
		report.Departments = append(report.Departments, *d)
	}
	sort.Slice(report.Departments, func(i, j int) bool {
		if report.Departments[i].Total != report.Departments[j].Total {
			return report.Departments[i].Total > report.Departments[j].Total
		}
		return report.Departments[i].Name < report.Departments[j].Name
	})

	return report
}
