package corehandler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrmgo/internal/datatable"
	"hrmgo/internal/domain/auth"
	"hrmgo/internal/domain/core"
	"hrmgo/internal/platform/metrics"
	"hrmgo/internal/transport/http/handlers/handlertest"
	"hrmgo/internal/transport/http/shared"
)

type fakeStore struct {
	employees   []core.Employee
	departments []core.Department
	created     []core.Employee
	legacy      map[int64]string
	createErr   error
}

func (f *fakeStore) ListEmployees(context.Context, string) ([]core.Employee, error) {
	out := make([]core.Employee, len(f.employees))
	copy(out, f.employees)
	return out, nil
}

func (f *fakeStore) GetEmployee(_ context.Context, _, id string) (core.Employee, error) {
	for _, e := range f.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Employee{}, core.ErrNotFound
}

func (f *fakeStore) CreateEmployee(_ context.Context, _ string, emp core.Employee) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, emp)
	return "new-" + emp.Email, nil
}

func (f *fakeStore) EmployeeIDByLegacyID(_ context.Context, _ string, legacyID int64) (string, error) {
	if id, ok := f.legacy[legacyID]; ok {
		return id, nil
	}
	return "", core.ErrNotFound
}

func (f *fakeStore) ListDepartments(context.Context, string) ([]core.Department, error) {
	return f.departments, nil
}

func (f *fakeStore) CreateDepartment(context.Context, string, core.Department) (string, error) {
	return "d-new", nil
}

func (f *fakeStore) DepartmentExists(_ context.Context, _, id string) (bool, error) {
	for _, d := range f.departments {
		if d.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func ptr[T any](v T) *T { return &v }

func staff() *fakeStore {
	return &fakeStore{
		employees: []core.Employee{
			{ID: "e1", UserID: "u-Employee", Name: "Carol", Email: "carol@example.com", Department: "Sales", Salary: ptr(4000.0), BankAccount: "DE01"},
			{ID: "e2", Name: "Alice", Email: "alice@example.com", Department: "Engineering", Salary: ptr(5000.0), BankAccount: "DE02"},
			{ID: "e3", Name: "Bob", Email: "bob@example.com", Department: "Engineering", Salary: ptr(4500.0)},
		},
		departments: []core.Department{{ID: "d1", Name: "Engineering"}, {ID: "d2", Name: "Sales", Branch: "Berlin"}},
		legacy:      map[int64]string{7: "e3"},
	}
}

func newHandler(store *fakeStore) (*Handler, *handlertest.Auditor, *metrics.Collector) {
	auditor := &handlertest.Auditor{}
	collector := metrics.New()
	return NewHandler(store, handlertest.RolePerms(), auditor, collector, shared.PageLimits{Default: 10, Max: 50}), auditor, collector
}

func TestListEmployeesAppliesTableQuery(t *testing.T) {
	h, _, _ := newHandler(staff())
	router := handlertest.Router(h, handlertest.User(auth.RoleHR))

	rec := handlertest.Do(t, router, http.MethodGet, "/employees?search=engineering&sort=name&direction=desc", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var items []core.Employee
	env := handlertest.DecodeData(t, rec, &items)
	require.Len(t, items, 2)
	assert.Equal(t, "Bob", items[0].Name)
	assert.Equal(t, "Alice", items[1].Name)
	assert.Equal(t, "DE02", items[1].BankAccount)
	assert.Contains(t, string(env.Meta), `"filtered":2`)
	assert.Contains(t, string(env.Meta), `"total":3`)
}

func TestListEmployeesHidesPayForManagers(t *testing.T) {
	h, _, _ := newHandler(staff())
	router := handlertest.Router(h, handlertest.User(auth.RoleManager))

	rec := handlertest.Do(t, router, http.MethodGet, "/employees", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var items []core.Employee
	handlertest.DecodeData(t, rec, &items)
	require.Len(t, items, 3)
	for _, e := range items {
		assert.Nil(t, e.Salary, e.Name)
		assert.Empty(t, e.BankAccount, e.Name)
	}
}

func TestListEmployeesPastLastPage(t *testing.T) {
	h, _, _ := newHandler(staff())
	router := handlertest.Router(h, handlertest.User(auth.RoleHR))

	rec := handlertest.Do(t, router, http.MethodGet, "/employees?page=9&pageSize=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var items []core.Employee
	env := handlertest.DecodeData(t, rec, &items)
	assert.Empty(t, items)
	assert.Contains(t, string(env.Meta), `"page":9`)
	assert.Contains(t, string(env.Meta), `"totalPages":2`)
}

func TestListEmployeesRequiresPermission(t *testing.T) {
	h, _, _ := newHandler(staff())

	rec := handlertest.Do(t, handlertest.Router(h, handlertest.User(auth.RoleEmployee)), http.MethodGet, "/employees", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = handlertest.Do(t, handlertest.Router(h, auth.UserContext{}), http.MethodGet, "/employees", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetEmployeeSelfOnlyForEmployees(t *testing.T) {
	h, _, _ := newHandler(staff())
	router := handlertest.Router(h, handlertest.User(auth.RoleEmployee))

	rec := handlertest.Do(t, router, http.MethodGet, "/employees/e1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var emp core.Employee
	handlertest.DecodeData(t, rec, &emp)
	require.NotNil(t, emp.Salary)
	assert.Empty(t, emp.BankAccount)

	rec = handlertest.Do(t, router, http.MethodGet, "/employees/e2", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = handlertest.Do(t, router, http.MethodGet, "/employees/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateEmployee(t *testing.T) {
	store := staff()
	h, auditor, _ := newHandler(store)
	router := handlertest.Router(h, handlertest.User(auth.RoleHR))

	rec := handlertest.Do(t, router, http.MethodPost, "/employees", map[string]any{
		"name":          "Dana",
		"email":         " Dana@Example.com ",
		"departmentId":  "d1",
		"dateOfJoining": "2024-02-01",
		"salary":        3200,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, store.created, 1)
	assert.Equal(t, "dana@example.com", store.created[0].Email)
	require.NotNil(t, store.created[0].DateOfJoining)
	assert.True(t, store.created[0].DateOfJoining.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, []string{"core.employee.create"}, auditor.Actions())
}

func TestCreateEmployeeValidation(t *testing.T) {
	store := staff()
	h, _, _ := newHandler(store)
	router := handlertest.Router(h, handlertest.User(auth.RoleHR))

	rec := handlertest.Do(t, router, http.MethodPost, "/employees", map[string]any{
		"email":        "not-an-email",
		"departmentId": "nope",
		"salary":       -1,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	for _, field := range []string{"name", "email", "departmentId", "salary"} {
		assert.Contains(t, body, `"field":"`+field+`"`)
	}
	assert.Empty(t, store.created)
}

func TestCreateEmployeeDuplicateEmail(t *testing.T) {
	store := staff()
	store.createErr = &pgconn.PgError{Code: "23505"}
	h, _, _ := newHandler(store)
	router := handlertest.Router(h, handlertest.User(auth.RoleHR))

	rec := handlertest.Do(t, router, http.MethodPost, "/employees", map[string]any{"name": "Dana", "email": "dana@example.com"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestImportEmployeesSkipsKnownLegacyIDs(t *testing.T) {
	store := staff()
	h, auditor, _ := newHandler(store)
	router := handlertest.Router(h, handlertest.User(auth.RoleHR))

	rec := handlertest.Do(t, router, http.MethodPost, "/employees/import", map[string]any{
		"employees": []map[string]any{
			{"legacyId": 7, "name": "Bob", "email": "bob@example.com"},
			{"legacyId": 8, "name": "Eve", "email": "eve@example.com"},
			{"name": "No Id", "email": "noid@example.com"},
			{"legacyId": 9, "name": "", "email": "x@example.com"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result ImportResult
	handlertest.DecodeData(t, rec, &result)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Failures, 2)
	assert.Equal(t, 2, result.Failures[0].Index)
	assert.Equal(t, "name: name is required", result.Failures[1].Reason)
	require.Len(t, store.created, 1)
	require.NotNil(t, store.created[0].LegacyID)
	assert.Equal(t, int64(8), *store.created[0].LegacyID)
	assert.Equal(t, []string{"core.employee.import"}, auditor.Actions())
}

func TestImportEmployeesRejectsEmptyBatch(t *testing.T) {
	h, _, _ := newHandler(staff())
	router := handlertest.Router(h, handlertest.User(auth.RoleHR))

	rec := handlertest.Do(t, router, http.MethodPost, "/employees/import", map[string]any{"employees": []any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDepartmentsTableAndMetrics(t *testing.T) {
	h, _, collector := newHandler(staff())
	router := handlertest.Router(h, handlertest.User(auth.RoleHR))

	rec := handlertest.Do(t, router, http.MethodGet, "/departments?view=table&search=berlin", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var table datatable.Table
	handlertest.DecodeData(t, rec, &table)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Sales", table.Rows[0].Cells[0])
	assert.Equal(t, "Departments", table.Title)

	scrape := handlertest.Do(t, collector.Handler(), http.MethodGet, "/metrics", nil)
	assert.Contains(t, scrape.Body.String(), `hrmgo_table_list_requests_total{resource="departments"} 1`)
}

func TestExportEmployeesPDF(t *testing.T) {
	h, _, _ := newHandler(staff())
	router := handlertest.Router(h, handlertest.User(auth.RoleHR))

	rec := handlertest.Do(t, router, http.MethodGet, "/employees/export.pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, len(rec.Body.Bytes()) > 4 && string(rec.Body.Bytes()[:4]) == "%PDF")
}

func TestCreateDepartmentRequiresName(t *testing.T) {
	h, auditor, _ := newHandler(staff())
	router := handlertest.Router(h, handlertest.User(auth.RoleHR))

	rec := handlertest.Do(t, router, http.MethodPost, "/departments", map[string]any{"branch": "Paris"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = handlertest.Do(t, router, http.MethodPost, "/departments", map[string]any{"name": "Legal"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"core.department.create"}, auditor.Actions())
}
