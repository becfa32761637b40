package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/gartstein/directory/internal/directory/rpc"
	"github.com/spf13/cobra"
	"google.golang.org/grpc/status"
)

var (
	listQuery    string
	listPage     int
	listPageSize int
	listSort     string
	listOrder    string
	outputJSON   bool
	confirmAll   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List employees, one page at a time",
	RunE:  runList,
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one employee",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one employee",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var deleteAllCmd = &cobra.Command{
	Use:   "delete-all",
	Short: "Delete every employee",
	RunE:  runDeleteAll,
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Show the configured departments and positions",
	RunE:  runCatalog,
}

func init() {
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "search text (names, phone, email)")
	listCmd.Flags().IntVar(&listPage, "page", 1, "page number")
	listCmd.Flags().IntVar(&listPageSize, "page-size", 0, "page size (server default when 0)")
	listCmd.Flags().StringVar(&listSort, "sort", "id", "sort field")
	listCmd.Flags().StringVar(&listOrder, "order", "asc", "sort order (asc or desc)")

	for _, c := range []*cobra.Command{listCmd, getCmd, editCmd} {
		c.Flags().BoolVar(&outputJSON, "json", false, "print JSON instead of a table")
	}
	deleteAllCmd.Flags().BoolVar(&confirmAll, "yes", false, "confirm deleting every employee")
}

func runList(cmd *cobra.Command, _ []string) error {
	return withClient(cmd, func(ctx context.Context, client rpc.EmployeeServiceClient) error {
		resp, err := client.ListEmployees(ctx, &rpc.ListEmployeesRequest{
			Query:    listQuery,
			Page:     listPage,
			PageSize: listPageSize,
			Sort:     listSort,
			Order:    listOrder,
		})
		if err != nil {
			return describe(err)
		}
		if outputJSON {
			return printJSON(cmd.OutOrStdout(), resp)
		}
		printEmployees(cmd.OutOrStdout(), resp.Employees)
		fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d (%d employees)\n", resp.Page, resp.TotalPages, resp.Total)
		return nil
	})
}

func runGet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withClient(cmd, func(ctx context.Context, client rpc.EmployeeServiceClient) error {
		resp, err := client.GetEmployee(ctx, &rpc.GetEmployeeRequest{ID: id})
		if err != nil {
			return describe(err)
		}
		if outputJSON {
			return printJSON(cmd.OutOrStdout(), resp.Employee)
		}
		printEmployees(cmd.OutOrStdout(), []*rpc.Employee{resp.Employee})
		return nil
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withClient(cmd, func(ctx context.Context, client rpc.EmployeeServiceClient) error {
		if _, err := client.DeleteEmployee(ctx, &rpc.DeleteEmployeeRequest{ID: id}); err != nil {
			return describe(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted employee %d\n", id)
		return nil
	})
}

func runDeleteAll(cmd *cobra.Command, _ []string) error {
	if !confirmAll {
		return fmt.Errorf("refusing to delete every employee without --yes")
	}
	return withClient(cmd, func(ctx context.Context, client rpc.EmployeeServiceClient) error {
		resp, err := client.DeleteAllEmployees(ctx, &rpc.DeleteAllEmployeesRequest{})
		if err != nil {
			return describe(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d employees\n", resp.Removed)
		return nil
	})
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	return withClient(cmd, func(ctx context.Context, client rpc.EmployeeServiceClient) error {
		resp, err := client.GetCatalog(ctx, &rpc.GetCatalogRequest{})
		if err != nil {
			return describe(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "departments: %s\n", strings.Join(resp.Departments, ", "))
		fmt.Fprintf(cmd.OutOrStdout(), "positions:   %s\n", strings.Join(resp.Positions, ", "))
		return nil
	})
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid employee id %q", arg)
	}
	return id, nil
}

// describe turns a status error into a message that lists the message keys
// of a rejected write.
func describe(err error) error {
	st := status.Convert(err)
	details := rpc.ValidationFromStatus(st)
	if details == nil {
		return fmt.Errorf("%s: %s", st.Code(), st.Message())
	}
	return fmt.Errorf("%s: %s", st.Code(), strings.Join(validationKeys(details), ", "))
}

func validationKeys(d *rpc.ValidationDetails) []string {
	var keys []string
	for _, field := range sortedKeys(d.Fields) {
		keys = append(keys, field+"="+d.Fields[field])
	}
	return append(keys, d.Conflicts...)
}

func printEmployees(w io.Writer, employees []*rpc.Employee) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFIRST NAME\tLAST NAME\tEMAIL\tPHONE\tDEPARTMENT\tPOSITION\tEMPLOYED\tBORN")
	for _, e := range employees {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.FirstName, e.LastName, e.Email, e.Phone, e.Department, e.Position,
			e.DateOfEmployment, orDash(e.DateOfBirth))
	}
	_ = tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
