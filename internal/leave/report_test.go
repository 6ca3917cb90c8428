package leave_test

import (
	"fmt"
	"time"

	"github.com/frahmantamala/leave-management/internal/leave"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Leave Report", func() {
	var now time.Time

	BeforeEach(func() {
		now = time.Date(2023, 7, 15, 12, 0, 0, 0, time.UTC)
	})

	newRequest := func(id, employee string, status leave.Status, typ leave.Type, created time.Time) *leave.LeaveRequest {
		return &leave.LeaveRequest{
			ID:           id,
			EmployeeID:   employee,
			EmployeeName: "Name " + employee,
			Status:       status,
			Type:         typ,
			CreatedAt:    created,
		}
	}

	It("should produce zeroed totals and six trend buckets for no requests", func() {
		report := leave.BuildReport(nil, nil, now)

		Expect(report.Status.Total).To(Equal(0))
		Expect(report.ByType).To(HaveKeyWithValue(leave.TypePaid, 0))
		Expect(report.ByType).To(HaveKeyWithValue(leave.TypeUnpaid, 0))
		Expect(report.Trend).To(HaveLen(leave.TrendMonths))
		Expect(report.Trend[0].Label).To(Equal("Feb 2023"))
		Expect(report.Trend[5].Label).To(Equal("Jul 2023"))
		Expect(report.TopEmployees).To(BeEmpty())
		Expect(report.Departments).To(BeEmpty())
	})

	It("should count by status, type and month", func() {
		requests := []*leave.LeaveRequest{
			newRequest("l1", "emp1", leave.StatusApproved, leave.TypePaid, time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)),
			newRequest("l2", "emp1", leave.StatusPending, leave.TypeUnpaid, time.Date(2023, 7, 3, 0, 0, 0, 0, time.UTC)),
			newRequest("l3", "emp2", leave.StatusRejected, leave.TypePaid, time.Date(2023, 5, 9, 0, 0, 0, 0, time.UTC)),
			newRequest("l4", "emp2", leave.StatusApproved, leave.TypePaid, time.Date(2022, 1, 9, 0, 0, 0, 0, time.UTC)),
		}

		report := leave.BuildReport(requests, map[string]string{"emp1": "Engineering"}, now)

		Expect(report.Status).To(Equal(leave.Counts{Total: 4, Approved: 2, Pending: 1, Rejected: 1}))
		Expect(report.ByType[leave.TypePaid]).To(Equal(3))
		Expect(report.ByType[leave.TypeUnpaid]).To(Equal(1))

		july := report.Trend[5]
		Expect(july.Total).To(Equal(2))
		Expect(july.Approved).To(Equal(1))
		Expect(july.Pending).To(Equal(1))
		Expect(report.Trend[3].Rejected).To(Equal(1))

		Expect(report.Departments).To(HaveLen(2))
		Expect(report.Departments[0].Name).To(Equal("Engineering"))
		Expect(report.Departments[1].Name).To(Equal(leave.UnassignedDepartment))
	})

	It("should rank at most five employees by request count keeping first-seen order on ties", func() {
		var requests []*leave.LeaveRequest
		for i := 1; i <= 7; i++ {
			employee := fmt.Sprintf("emp%d", i)
			requests = append(requests, newRequest("a"+employee, employee, leave.StatusPending, leave.TypePaid, now))
		}
		requests = append(requests, newRequest("extra", "emp6", leave.StatusApproved, leave.TypePaid, now))

		report := leave.BuildReport(requests, nil, now)

		Expect(report.TopEmployees).To(HaveLen(leave.TopEmployeeLimit))
		Expect(report.TopEmployees[0].EmployeeID).To(Equal("emp6"))
		Expect(report.TopEmployees[0].Total).To(Equal(2))
		Expect(report.TopEmployees[1].EmployeeID).To(Equal("emp1"))
		Expect(report.TopEmployees[4].EmployeeID).To(Equal("emp4"))
	})

	It("should count inclusive days for a request", func() {
		request := &leave.LeaveRequest{StartDate: "2023-06-01", EndDate: "2023-06-05"}
		Expect(request.Days()).To(Equal(5))

		request.EndDate = "2023-05-31"
		Expect(request.Days()).To(Equal(0))
	})
})
