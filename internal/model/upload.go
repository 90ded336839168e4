package model

type Feature struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Confidence float64   `json:"confidence"`
	Vector     []float64 `json:"vector"`
}

type UploadResponse struct {
	Filename     string    `json:"filename"`
	ProcessingMS int       `json:"processing_ms"`
	Features     []Feature `json:"features"`
}

// UploadedFile is the part of a multipart upload the processors need.
type UploadedFile struct {
	Filename string
	Size     int64
	Content  []byte
}
