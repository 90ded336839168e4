package patient

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/pkg/listquery"
)

const dateLayout = "2006-01-02"

var namesByGender = map[string][]string{
	"Male": {
		"John Smith", "Robert Chen", "James Anderson", "Michael Davis", "David Wilson",
		"Thomas Brown", "Christopher Lee", "Daniel Garcia", "Matthew Rodriguez", "Anthony Martinez",
	},
	"Female": {
		"Maria Garcia", "Lisa Thompson", "Sarah Johnson", "Emily Davis", "Jennifer Wilson",
		"Jessica Brown", "Amanda Lee", "Nicole Garcia", "Stephanie Rodriguez", "Rachel Martinez",
	},
}

var departmentByDiagnosis = map[string]string{
	"Cardiovascular Disease": "Cardiology",
	"Diabetes":               "Endocrinology",
	"Respiratory Infection":  "Pulmonology",
	"Hypertension":           "Cardiology",
	"Pneumonia":              "Pulmonology",
	"Heart Failure":          "Cardiology",
	"Stroke":                 "Neurology",
	"Cancer":                 "Oncology",
	"Kidney Disease":         "Nephrology",
	"Liver Disease":          "Hepatology",
}

const defaultDepartment = "General Medicine"

var doctorRoster = []string{
	"Dr. Sarah Johnson", "Dr. Emily Rodriguez", "Dr. Michael Brown",
	"Dr. David Wilson", "Dr. Jennifer Lee", "Dr. Christopher Chen",
	"Dr. Amanda Davis", "Dr. Robert Wilson", "Dr. Lisa Anderson",
}

var (
	allergyPool   = []string{"Penicillin", "Shellfish", "Dust"}
	chronicPool   = []string{"Hypertension", "Diabetes", "Asthma"}
	surgeryPool   = []string{"Appendectomy", "Knee Replacement", "Cataract Surgery"}
	defaultGender = "Male"
)

// Enricher turns source patients into dashboard records. Display fields
// without a source value are drawn from a generator seeded by the patient's
// id and gender, so one patient always renders the same way for a given
// reference day.
type Enricher struct {
	Reference time.Time
}

func NewEnricher(reference time.Time) Enricher {
	y, m, d := reference.UTC().Date()
	return Enricher{Reference: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// idIndex reduces the decimal digits of id modulo n. An id without digits
// maps to 0.
func idIndex(id string, n int) int {
	idx := 0
	for _, r := range id {
		if r >= '0' && r <= '9' {
			idx = (idx*10 + int(r-'0')) % n
		}
	}
	return idx
}

// DepartmentFor maps a diagnosis to its department.
func DepartmentFor(diagnosis string) string {
	if dept, ok := departmentByDiagnosis[diagnosis]; ok {
		return dept
	}
	return defaultDepartment
}

// StatusFor derives the care status: readmitted patients stay active, long
// stays count as discharged, everything else is pending.
func StatusFor(p model.BackendPatient) model.PatientStatus {
	switch {
	case p.Readmission:
		return model.PatientStatusActive
	case p.LengthOfStay > 10:
		return model.PatientStatusDischarged
	default:
		return model.PatientStatusPending
	}
}

// NameFor picks a display name by gender; unknown genders use the male list.
func NameFor(id, gender string) string {
	names, ok := namesByGender[gender]
	if !ok {
		names = namesByGender[defaultGender]
	}
	return names[idIndex(id, len(names))]
}

func AssignedDoctorFor(id string) string {
	return doctorRoster[idIndex(id, len(doctorRoster))]
}

func emailFor(name string) string {
	return strings.Replace(strings.ToLower(name), " ", ".", 1) + "@email.com"
}

func newRand(id, gender string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(id))
	h.Write([]byte{0})
	h.Write([]byte(gender))
	seed := h.Sum64()
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// between returns an int in [lo, hi].
func between(r *rand.Rand, lo, hi int) int {
	return lo + r.IntN(hi-lo+1)
}

func (e Enricher) daysFromReference(days int) string {
	return e.Reference.AddDate(0, 0, days).Format(dateLayout)
}

func (e Enricher) Enrich(p model.BackendPatient) model.Patient {
	r := newRand(p.ID, p.Gender)

	name := NameFor(p.ID, p.Gender)
	doctor := AssignedDoctorFor(p.ID)

	admission := e.daysFromReference(-r.IntN(365))
	contact := model.PatientContact{
		Phone:   fmt.Sprintf("+1-555-%03d-%04d", between(r, 100, 999), between(r, 1000, 9999)),
		Email:   emailFor(name),
		Address: fmt.Sprintf("%d Main St, City, State %05d", between(r, 1, 9999), between(r, 10000, 99999)),
	}
	history := model.MedicalHistory{
		Allergies:         clip(allergyPool, between(r, 1, 3)),
		ChronicConditions: clip(chronicPool, between(r, 1, 2)),
		Surgeries:         clip(surgeryPool, between(r, 0, 1)),
	}
	medication := model.Medication{
		Name:      "Metformin",
		Dosage:    "500mg",
		Frequency: "Twice daily",
		StartDate: e.daysFromReference(-r.IntN(30)),
	}
	vitals := model.VitalSigns{
		BloodPressure:    fmt.Sprintf("%d/%d mmHg", between(r, 110, 149), between(r, 60, 79)),
		HeartRate:        between(r, 60, 99),
		Temperature:      listquery.Round1(97 + r.Float64()*4),
		OxygenSaturation: between(r, 90, 99),
	}
	appointment := model.PatientAppointment{
		Date:   e.daysFromReference(r.IntN(30)),
		Time:   "09:00 AM",
		Type:   "Follow-up",
		Doctor: doctor,
		Status: "scheduled",
	}

	return model.Patient{
		ID:                 p.ID,
		Name:               name,
		Age:                p.Age,
		Gender:             p.Gender,
		Condition:          p.Diagnosis,
		AssignedDoctor:     doctor,
		Department:         DepartmentFor(p.Diagnosis),
		AdmissionDate:      admission,
		Status:             StatusFor(p),
		Contact:            contact,
		MedicalHistory:     history,
		CurrentMedications: []model.Medication{medication},
		VitalSigns:         vitals,
		Appointments:       []model.PatientAppointment{appointment},
	}
}

func clip(pool []string, n int) []string {
	out := make([]string, n)
	copy(out, pool[:n])
	return out
}
