package documents

import "time"

// Document types attached to an application.
const (
	TypePayslip     = "slip_gaji"
	TypeIdentity    = "ktp"
	TypeSurveyNotes = "catatan_survei"
	TypeCollateral  = "jaminan"
	TypeOther       = "lainnya"
)

// Document represents an uploaded supporting document for an application.
type Document struct {
	ID               string
	UserID           string
	ApplicationID    string
	DocType          string
	FileName         string
	OriginalFilename string
	MimeType         string
	ContentType      string
	SizeBytes        int64
	StorageProvider  string
	StorageKey       string
	ExtractedTextKey string
	ExtractedAt      *time.Time
	CreatedAt        time.Time
}
