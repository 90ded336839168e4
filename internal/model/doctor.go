package model

type Contact struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type DoctorStats struct {
	SurgeriesPerformed int `json:"surgeriesPerformed"`
	PatientsRecovered  int `json:"patientsRecovered"`
	ResearchPapers     int `json:"researchPapers"`
	Awards             int `json:"awards"`
}

type Doctor struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Specialization string      `json:"specialization"`
	Department     string      `json:"department"`
	Experience     int         `json:"experience"`
	Rating         float64     `json:"rating"`
	SuccessRate    float64     `json:"successRate"`
	Contact        Contact     `json:"contact"`
	Location       string      `json:"location"`
	Availability   string      `json:"availability"`
	Education      string      `json:"education"`
	Languages      []string    `json:"languages"`
	Certifications []string    `json:"certifications"`
	Stats          DoctorStats `json:"stats"`
}

// DoctorSummary is the precomputed summary stored alongside the roster.
type DoctorSummary struct {
	TotalDoctors       int     `json:"totalDoctors"`
	AverageExperience  float64 `json:"averageExperience"`
	AverageRating      float64 `json:"averageRating"`
	AverageSuccessRate float64 `json:"averageSuccessRate"`
}

// DoctorsDocument is the doctors data source: roster plus stored summary.
type DoctorsDocument struct {
	Doctors []Doctor      `json:"doctors"`
	Summary DoctorSummary `json:"summary"`
}

type CalculatedStats struct {
	AverageExperience  float64  `json:"average_experience"`
	AverageRating      float64  `json:"average_rating"`
	AverageSuccessRate float64  `json:"average_success_rate"`
	Departments        []string `json:"departments"`
	Specializations    []string `json:"specializations"`
}

type DoctorSummaryReport struct {
	DoctorSummary
	CalculatedStats CalculatedStats `json:"calculated_stats"`
}

type SpecializationCount struct {
	Specialization string `json:"specialization"`
	Count          int    `json:"count"`
}

type DepartmentCount struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}

type RatingCount struct {
	Rating string `json:"rating"`
	Count  int    `json:"count"`
}

type ExperiencePoint struct {
	Experience  int     `json:"experience"`
	SuccessRate float64 `json:"successRate"`
	Rating      float64 `json:"rating"`
	Name        string  `json:"name"`
}

type DoctorAnalytics struct {
	SpecializationDistribution []SpecializationCount `json:"specialization_distribution"`
	DepartmentDistribution     []DepartmentCount     `json:"department_distribution"`
	RatingDistribution         []RatingCount         `json:"rating_distribution"`
	ExperienceVsSuccess        []ExperiencePoint     `json:"experience_vs_success"`
}
