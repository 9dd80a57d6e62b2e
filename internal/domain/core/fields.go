package core

import "hrmgo/internal/domain/auth"

// FilterEmployeeFields blanks pay and bank details for everyone except HR.
// Employees looking at their own record keep their salary.
func FilterEmployeeFields(emp *Employee, user auth.UserContext, isSelf bool) {
	if user.RoleName == auth.RoleHR {
		return
	}

	emp.BankAccount = ""
	if user.RoleName == auth.RoleEmployee && isSelf {
		return
	}
	emp.Salary = nil
}

func FilterEmployees(items []Employee, user auth.UserContext) []Employee {
	for i := range items {
		FilterEmployeeFields(&items[i], user, items[i].UserID != "" && items[i].UserID == user.UserID)
	}
	return items
}
