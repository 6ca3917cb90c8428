package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/frahmantamala/leave-management/internal/leave"
	"github.com/spf13/cobra"
)

var reportJSON bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize leave requests (supervisors only)",
	RunE: withClient(func(ctx context.Context, app *clientApp, _ []string) error {
		if _, err := app.requireSupervisor(); err != nil {
			return err
		}
		if err := app.leaves.Refresh(ctx); err != nil {
			return fmt.Errorf("%s: %w", app.leaves.Err(), err)
		}
		if err := app.users.Refresh(ctx); err != nil {
			app.logger.Warn("departments unavailable, grouping everyone as unassigned", "error", err)
		}

		report := leave.BuildReport(app.leaves.LeaveRequests(), app.users.Departments(), time.Now())
		if reportJSON {
			enc := json.NewEncoder(app.out)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		printReport(app, report)
		return nil
	}),
}

func printReport(app *clientApp, r leave.Report) {
	tw := app.table()
	fmt.Fprintf(tw, "Total\t%d\n", r.Status.Total)
	fmt.Fprintf(tw, "Approved\t%d\n", r.Status.Approved)
	fmt.Fprintf(tw, "Pending\t%d\n", r.Status.Pending)
	fmt.Fprintf(tw, "Rejected\t%d\n", r.Status.Rejected)

	types := make([]string, 0, len(r.ByType))
	for t := range r.ByType {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(tw, "Type %s\t%d\n", t, r.ByType[leave.Type(t)])
	}
	_ = tw.Flush()

	fmt.Fprintln(app.out, "\nMonthly trend")
	tw = app.table()
	fmt.Fprintln(tw, "MONTH\tTOTAL\tAPPROVED\tPENDING\tREJECTED")
	for _, m := range r.Trend {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", m.Label, m.Total, m.Approved, m.Pending, m.Rejected)
	}
	_ = tw.Flush()

	fmt.Fprintln(app.out, "\nTop employees")
	tw = app.table()
	fmt.Fprintln(tw, "EMPLOYEE\tTOTAL\tAPPROVED\tPENDING\tREJECTED")
	for _, e := range r.TopEmployees {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", e.Name, e.Total, e.Approved, e.Pending, e.Rejected)
	}
	_ = tw.Flush()

	fmt.Fprintln(app.out, "\nDepartments")
	tw = app.table()
	fmt.Fprintln(tw, "DEPARTMENT\tTOTAL\tAPPROVED\tPENDING\tREJECTED")
	for _, d := range r.Departments {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", d.Name, d.Total, d.Approved, d.Pending, d.Rejected)
	}
	_ = tw.Flush()
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print the report as JSON")
}
