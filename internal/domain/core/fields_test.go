package core

import (
	"testing"

	"hrmgo/internal/domain/auth"
)

func sampleEmployee() *Employee {
	salary := 120000.0
	return &Employee{
		UserID:      "u1",
		BankAccount: "BANK123",
		Salary:      &salary,
	}
}

func TestFilterEmployeeFieldsHR(t *testing.T) {
	emp := sampleEmployee()
	user := auth.UserContext{RoleName: auth.RoleHR}

	FilterEmployeeFields(emp, user, false)

	if emp.BankAccount == "" || emp.Salary == nil {
		t.Fatal("HR should retain sensitive fields")
	}
}

func TestFilterEmployeeFieldsManager(t *testing.T) {
	emp := sampleEmployee()
	user := auth.UserContext{RoleName: auth.RoleManager}

	FilterEmployeeFields(emp, user, false)

	if emp.BankAccount != "" || emp.Salary != nil {
		t.Fatal("Manager should not see sensitive fields")
	}
}

func TestFilterEmployeeFieldsEmployeeSelf(t *testing.T) {
	emp := sampleEmployee()
	user := auth.UserContext{UserID: "u1", RoleName: auth.RoleEmployee}

	FilterEmployees([]Employee{*emp}, user)
	FilterEmployeeFields(emp, user, true)

	if emp.BankAccount != "" {
		t.Fatal("bank account should be hidden")
	}
	if emp.Salary == nil {
		t.Fatal("employee should see own salary")
	}
}

func TestFilterEmployeesOthers(t *testing.T) {
	items := []Employee{*sampleEmployee()}
	items[0].UserID = "someone-else"

	out := FilterEmployees(items, auth.UserContext{UserID: "u1", RoleName: auth.RoleEmployee})
	if out[0].Salary != nil || out[0].BankAccount != "" {
		t.Fatal("employee should not see colleagues' pay")
	}
}

func TestEmployeeFieldNames(t *testing.T) {
	emp := Employee{Name: "Ada", Department: "R&D"}
	if v, ok := emp.Field("department"); !ok || v != "R&D" {
		t.Fatalf("unexpected department field: %v %v", v, ok)
	}
	if _, ok := emp.Field("bankAccount"); ok {
		t.Fatal("bank account must not be searchable")
	}
}
