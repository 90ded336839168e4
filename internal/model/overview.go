package model

// DepartmentLoad relates staffing to caseload for one department.
type DepartmentLoad struct {
	Department string `json:"department"`
	Doctors    int    `json:"doctors"`
	Patients   int    `json:"patients"`
}

type DoctorOverview struct {
	Total int             `json:"total"`
	Stats CalculatedStats `json:"stats"`
}

// Overview is the landing dashboard: doctor and patient headline figures
// computed from one pair of snapshots.
type Overview struct {
	Doctors     DoctorOverview   `json:"doctors"`
	Patients    PatientMetrics   `json:"patients"`
	Departments []DepartmentLoad `json:"departments"`
}
