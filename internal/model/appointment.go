package model

type AppointmentStatus string

const AppointmentStatusConfirmed AppointmentStatus = "confirmed"

// AppointmentIDFormat renders the 1-based booking sequence number.
const AppointmentIDFormat = "APT%04d"

// CreatedAtLayout matches the booking timestamp format clients parse.
const CreatedAtLayout = "2006-01-02T15:04:05.000Z"

type BookAppointmentRequest struct {
	PatientName     string `json:"patientName" validate:"required,max=200"`
	PatientPhone    string `json:"patientPhone" validate:"required,max=40"`
	SelectedDoctor  string `json:"selectedDoctor" validate:"required"`
	AppointmentDate string `json:"appointmentDate" validate:"required,datestr"`
	AppointmentTime string `json:"appointmentTime" validate:"required"`
	Notes           string `json:"notes,omitempty" validate:"max=2000"`
	DocumentName    string `json:"documentName,omitempty"`
	DocumentSize    int64  `json:"documentSize,omitempty" validate:"gte=0"`
	BookingDate     string `json:"bookingDate,omitempty"`
}

type Appointment struct {
	ID              string            `json:"id" db:"id"`
	PatientName     string            `json:"patientName" db:"patient_name"`
	PatientPhone    string            `json:"patientPhone" db:"patient_phone"`
	SelectedDoctor  string            `json:"selectedDoctor" db:"selected_doctor"`
	AppointmentDate string            `json:"appointmentDate" db:"appointment_date"`
	AppointmentTime string            `json:"appointmentTime" db:"appointment_time"`
	Notes           string            `json:"notes,omitempty" db:"notes"`
	DocumentName    string            `json:"documentName,omitempty" db:"document_name"`
	DocumentSize    int64             `json:"documentSize,omitempty" db:"document_size"`
	BookingDate     string            `json:"bookingDate,omitempty" db:"booking_date"`
	Status          AppointmentStatus `json:"status" db:"status"`
	CreatedAt       string            `json:"created_at" db:"created_at"`
}

type BookAppointmentResponse struct {
	Status        string       `json:"status"`
	Message       string       `json:"message"`
	AppointmentID string       `json:"appointment_id,omitempty"`
	Appointment   *Appointment `json:"appointment,omitempty"`
	Error         string       `json:"error,omitempty"`
}
