package models

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Dropped enrollments are deleted outright, so ACTIVE is the only
// persisted status.
const EnrollmentStatusActive EnrollmentStatus = "ACTIVE"

// Enrollment captures a student's registration in a section. The ID is
// deterministic ("enroll-{studentID}-{sectionID}") so a (student, section)
// pair maps to at most one row.
type Enrollment struct {
	EnrollmentID string           `db:"enrollment_id" json:"enrollment_id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	SectionID    string           `db:"section_id" json:"section_id"`
	Status       EnrollmentStatus `db:"status" json:"status"`
}

// BuildEnrollmentID builds the deterministic identifier for a registration.
func BuildEnrollmentID(studentID, sectionID string) string {
	return "enroll-" + studentID + "-" + sectionID
}
