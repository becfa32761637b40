package main

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/gartstein/directory/internal/directory/rpc"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newTarget is the edit argument that opens the form in create mode.
const newTarget = "new"

// employeeFlags are the form fields shared by edit and check.
type employeeFlags struct {
	firstName  string
	lastName   string
	email      string
	phone      string
	department string
	position   string
	employed   string
	born       string
	salary     float64
	clearBorn  bool
	clearPay   bool
}

var (
	editForm  employeeFlags
	checkForm employeeFlags
	excludeID int64
)

var editCmd = &cobra.Command{
	Use:   "edit <id|new>",
	Short: "Create or update an employee",
	Long: `Create an employee with "edit new", or update an existing one with
"edit <id>". When updating, only the flags that are set are sent.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate an employee without saving it",
	RunE:  runCheck,
}

func init() {
	editForm.register(editCmd.Flags())
	checkForm.register(checkCmd.Flags())
	checkCmd.Flags().Int64Var(&excludeID, "exclude", 0, "id of the employee being edited")
}

func (f *employeeFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.firstName, "first-name", "", "first name")
	fs.StringVar(&f.lastName, "last-name", "", "last name")
	fs.StringVar(&f.email, "email", "", "email address")
	fs.StringVar(&f.phone, "phone", "", "phone number")
	fs.StringVar(&f.department, "department", "", "department")
	fs.StringVar(&f.position, "position", "", "position")
	fs.StringVar(&f.employed, "employed", "", "date of employment (YYYY-MM-DD)")
	fs.StringVar(&f.born, "born", "", "date of birth (YYYY-MM-DD)")
	fs.Float64Var(&f.salary, "salary", 0, "salary")
	fs.BoolVar(&f.clearBorn, "clear-born", false, "remove the date of birth")
	fs.BoolVar(&f.clearPay, "clear-salary", false, "remove the salary")
}

func (f *employeeFlags) employee(fs *pflag.FlagSet) *rpc.Employee {
	emp := &rpc.Employee{
		FirstName:        f.firstName,
		LastName:         f.lastName,
		Email:            f.email,
		Phone:            f.phone,
		Department:       f.department,
		Position:         f.position,
		DateOfEmployment: f.employed,
		DateOfBirth:      f.born,
	}
	if fs.Changed("salary") {
		salary := f.salary
		emp.Salary = &salary
	}
	return emp
}

// patch holds only the flags the user set.
func (f *employeeFlags) patch(fs *pflag.FlagSet) *rpc.EmployeePatch {
	p := &rpc.EmployeePatch{
		ClearDateOfBirth: f.clearBorn,
		ClearSalary:      f.clearPay,
	}
	set := func(name string, v string) *string {
		if !fs.Changed(name) {
			return nil
		}
		return &v
	}
	p.FirstName = set("first-name", f.firstName)
	p.LastName = set("last-name", f.lastName)
	p.Email = set("email", f.email)
	p.Phone = set("phone", f.phone)
	p.Department = set("department", f.department)
	p.Position = set("position", f.position)
	p.DateOfEmployment = set("employed", f.employed)
	p.DateOfBirth = set("born", f.born)
	if fs.Changed("salary") {
		salary := f.salary
		p.Salary = &salary
	}
	return p
}

func runEdit(cmd *cobra.Command, args []string) error {
	create := args[0] == newTarget
	var id int64
	if !create {
		var err error
		if id, err = parseID(args[0]); err != nil {
			return err
		}
	}

	return withClient(cmd, func(ctx context.Context, client rpc.EmployeeServiceClient) error {
		var emp *rpc.Employee
		if create {
			resp, err := client.CreateEmployee(ctx, &rpc.CreateEmployeeRequest{Employee: editForm.employee(cmd.Flags())})
			if err != nil {
				return describe(err)
			}
			emp = resp.Employee
		} else {
			resp, err := client.UpdateEmployee(ctx, &rpc.UpdateEmployeeRequest{ID: id, Patch: editForm.patch(cmd.Flags())})
			if err != nil {
				return describe(err)
			}
			emp = resp.Employee
		}
		if outputJSON {
			return printJSON(cmd.OutOrStdout(), emp)
		}
		printEmployees(cmd.OutOrStdout(), []*rpc.Employee{emp})
		return nil
	})
}

func runCheck(cmd *cobra.Command, _ []string) error {
	return withClient(cmd, func(ctx context.Context, client rpc.EmployeeServiceClient) error {
		resp, err := client.CheckEmployee(ctx, &rpc.CheckEmployeeRequest{
			Employee:  checkForm.employee(cmd.Flags()),
			ExcludeID: excludeID,
		})
		if err != nil {
			return describe(err)
		}
		if resp.Valid {
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		}
		for _, key := range validationKeys(&resp.ValidationDetails) {
			fmt.Fprintln(cmd.OutOrStdout(), key)
		}
		return fmt.Errorf("employee is invalid")
	})
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
