package auth

// Permission keys follow the HRMGO naming ("<verb> <resource>") so that
// databases imported from HRMGO keep working role assignments.
const (
	PermManageEmployee          = "manage employee"
	PermCreateEmployee          = "create employee"
	PermEditEmployee            = "edit employee"
	PermShowEmployee            = "show employee"
	PermManageDepartment        = "manage department"
	PermCreateDepartment        = "create department"
	PermManageGoalTracking      = "manage goal tracking"
	PermCreateGoalTracking      = "create goal tracking"
	PermManageJob               = "manage job"
	PermCreateJob               = "create job"
	PermManageInterview         = "manage interview schedule"
	PermCreateInterview         = "create interview schedule"
	PermManageAttendance        = "manage attendance"
	PermCreateAttendance        = "create attendance"
	PermManageRegularization    = "manage regularization"
	PermCreateRegularization    = "create regularization"
	PermApproveRegularization   = "approve regularization"
	PermManageCompanyPolicy     = "manage company policy"
	PermCreateCompanyPolicy     = "create company policy"
	PermManageRegulation        = "manage regulation"
	PermCreateRegulation        = "create regulation"
	PermManageAuditLog          = "manage audit log"
	PermManageLanguage          = "manage language"
	PermManageSystemSettings    = "manage system settings"
	PermImportLegacyEmployees   = "import employee"
	PermExportReports           = "export report"
)

var DefaultPermissions = []string{
	PermManageEmployee,
	PermCreateEmployee,
	PermEditEmployee,
	PermShowEmployee,
	PermManageDepartment,
	PermCreateDepartment,
	PermManageGoalTracking,
	PermCreateGoalTracking,
	PermManageJob,
	PermCreateJob,
	PermManageInterview,
	PermCreateInterview,
	PermManageAttendance,
	PermCreateAttendance,
	PermManageRegularization,
	PermCreateRegularization,
	PermApproveRegularization,
	PermManageCompanyPolicy,
	PermCreateCompanyPolicy,
	PermManageRegulation,
	PermCreateRegulation,
	PermManageAuditLog,
	PermManageLanguage,
	PermManageSystemSettings,
	PermImportLegacyEmployees,
	PermExportReports,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermShowEmployee,
		PermManageGoalTracking,
		PermManageAttendance,
		PermManageRegularization,
		PermCreateRegularization,
		PermManageCompanyPolicy,
		PermManageRegulation,
		PermManageLanguage,
	},
	RoleManager: {
		PermManageEmployee,
		PermShowEmployee,
		PermManageDepartment,
		PermManageGoalTracking,
		PermCreateGoalTracking,
		PermManageJob,
		PermManageInterview,
		PermCreateInterview,
		PermManageAttendance,
		PermManageRegularization,
		PermCreateRegularization,
		PermApproveRegularization,
		PermManageCompanyPolicy,
		PermManageRegulation,
		PermManageLanguage,
		PermExportReports,
	},
	RoleHR: {
		PermManageEmployee,
		PermCreateEmployee,
		PermEditEmployee,
		PermShowEmployee,
		PermManageDepartment,
		PermCreateDepartment,
		PermManageGoalTracking,
		PermCreateGoalTracking,
		PermManageJob,
		PermCreateJob,
		PermManageInterview,
		PermCreateInterview,
		PermManageAttendance,
		PermCreateAttendance,
		PermManageRegularization,
		PermCreateRegularization,
		PermApproveRegularization,
		PermManageCompanyPolicy,
		PermCreateCompanyPolicy,
		PermManageRegulation,
		PermCreateRegulation,
		PermManageAuditLog,
		PermManageLanguage,
		PermImportLegacyEmployees,
		PermExportReports,
	},
	RoleSystemAdmin: {
		PermManageSystemSettings,
		PermManageLanguage,
		PermManageAuditLog,
	},
}
