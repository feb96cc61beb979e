package user

type Permission string

const (
	// Registry
	PermissionWorkerManage Permission = "worker.manage"
	PermissionBaseManage   Permission = "base.manage"
	PermissionBaseView     Permission = "base.view"
	PermissionJobManage    Permission = "job.manage"

	// Attendance
	PermissionQRIssue          Permission = "attendance.qr_issue"
	PermissionSignupCreate     Permission = "attendance.signup"
	PermissionAttendanceScan   Permission = "attendance.scan"
	PermissionAttendanceView   Permission = "attendance.view"
	PermissionAttendanceExport Permission = "attendance.export"

	// Money
	PermissionSalaryManage  Permission = "salary.manage"
	PermissionPaymentManage Permission = "payment.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionWorkerManage,
		PermissionBaseManage,
		PermissionBaseView,
		PermissionJobManage,
		PermissionQRIssue,
		PermissionSignupCreate,
		PermissionAttendanceScan,
		PermissionAttendanceView,
		PermissionAttendanceExport,
		PermissionSalaryManage,
		PermissionPaymentManage,
	},
	RoleBaseManager: {
		PermissionBaseView,
		PermissionJobManage,
		PermissionAttendanceScan,
		PermissionAttendanceView,
		PermissionAttendanceExport,
	},
	RoleStaff: {
		PermissionBaseView,
		PermissionAttendanceScan,
		PermissionAttendanceView,
	},
	RoleWorker: {
		PermissionQRIssue,
		PermissionSignupCreate,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
