package domain

// DashboardSummary aggregates the counters shown on the admin dashboard.
// AppointmentsToday excludes canceled appointments.
type DashboardSummary struct {
	TotalUsers        int `json:"total_users"`
	ActiveDoctors     int `json:"active_doctors"`
	AppointmentsToday int `json:"appointments_today"`
	MedicalRecords    int `json:"medical_records"`
}
