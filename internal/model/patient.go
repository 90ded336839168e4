package model

// BackendPatient is a patient as stored in the data source.
type BackendPatient struct {
	ID           string        `json:"id"`
	Age          int           `json:"age"`
	Gender       string        `json:"gender"`
	Diagnosis    string        `json:"diagnosis"`
	LengthOfStay int           `json:"lengthOfStay"`
	Readmission  bool          `json:"readmission"`
	VitalSigns   BackendVitals `json:"vitalSigns"`
}

type BackendVitals struct {
	HeartRate        float64 `json:"heartRate"`
	BloodPressure    float64 `json:"bloodPressure"`
	Temperature      float64 `json:"temperature"`
	OxygenSaturation float64 `json:"oxygenSaturation"`
}

// PatientsDocument is the patients data source.
type PatientsDocument struct {
	Patients []BackendPatient `json:"patients"`
}

type PatientStatus string

const (
	PatientStatusActive     PatientStatus = "active"
	PatientStatusDischarged PatientStatus = "discharged"
	PatientStatusPending    PatientStatus = "pending"
)

type PatientContact struct {
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type MedicalHistory struct {
	Allergies         []string `json:"allergies"`
	ChronicConditions []string `json:"chronicConditions"`
	Surgeries         []string `json:"surgeries"`
}

type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	StartDate string `json:"startDate"`
}

type VitalSigns struct {
	BloodPressure    string  `json:"bloodPressure"`
	HeartRate        int     `json:"heartRate"`
	Temperature      float64 `json:"temperature"`
	OxygenSaturation int     `json:"oxygenSaturation"`
}

type PatientAppointment struct {
	Date   string `json:"date"`
	Time   string `json:"time"`
	Type   string `json:"type"`
	Doctor string `json:"doctor"`
	Status string `json:"status"`
}

// Patient is the enriched record served to dashboards.
type Patient struct {
	ID                 string               `json:"id"`
	Name               string               `json:"name"`
	Age                int                  `json:"age"`
	Gender             string               `json:"gender"`
	Condition          string               `json:"condition"`
	AssignedDoctor     string               `json:"assignedDoctor"`
	Department         string               `json:"department"`
	AdmissionDate      string               `json:"admissionDate"`
	Status             PatientStatus        `json:"status"`
	Contact            PatientContact       `json:"contact"`
	MedicalHistory     MedicalHistory       `json:"medicalHistory"`
	CurrentMedications []Medication         `json:"currentMedications"`
	VitalSigns         VitalSigns           `json:"vitalSigns"`
	Appointments       []PatientAppointment `json:"appointments"`
}

type PatientMetrics struct {
	TotalPatients  int     `json:"totalPatients"`
	AverageAge     int     `json:"averageAge"`
	ActivePatients int     `json:"activePatients"`
	RecoveryRate   float64 `json:"recoveryRate"`
}

type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type AgeHeartRatePoint struct {
	ID        string `json:"id"`
	Age       int    `json:"age"`
	HeartRate int    `json:"heartRate"`
}

type PatientInsights struct {
	Metrics                PatientMetrics      `json:"metrics"`
	DepartmentDistribution []LabelCount        `json:"department_distribution"`
	StatusDistribution     []LabelCount        `json:"status_distribution"`
	DiagnosisDistribution  []LabelCount        `json:"diagnosis_distribution"`
	AgeDistribution        []LabelCount        `json:"age_distribution"`
	ReadmissionRate        float64             `json:"readmission_rate"`
	AverageLengthOfStay    float64             `json:"average_length_of_stay"`
	AgeVsHeartRate         []AgeHeartRatePoint `json:"age_vs_heart_rate"`
}
