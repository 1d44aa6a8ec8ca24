package models

// GradeComponent is one weighted score inside a GradeBook. Weight 0 marks a
// raw score recorded before weighting was assigned.
type GradeComponent struct {
	Name   string  `db:"name" json:"name"`
	Score  float64 `db:"score" json:"score"`
	Weight float64 `db:"weight" json:"weight"`
}

// GradeBook holds the component scores and computed final grade for one
// enrollment.
type GradeBook struct {
	EnrollmentID string           `db:"enrollment_id" json:"enrollment_id"`
	Components   []GradeComponent `json:"components"`
	FinalGrade   *float64         `db:"final_grade" json:"final_grade,omitempty"`
}

// WeightedTotal computes sum(score * weight) over the components.
func (g GradeBook) WeightedTotal() float64 {
	var total float64
	for _, c := range g.Components {
		total += c.Score * c.Weight
	}
	return total
}

// SectionGradeRow is the instructor's view of one student's gradebook within
// a section.
type SectionGradeRow struct {
	EnrollmentID string           `json:"enrollment_id"`
	StudentID    string           `json:"student_id"`
	Components   []GradeComponent `json:"components"`
	FinalGrade   *float64         `json:"final_grade,omitempty"`
}

// GradeView is the read model for a student's grades in one section.
type GradeView struct {
	CourseCode string           `json:"course_code"`
	SectionID  string           `json:"section_id"`
	Components []GradeComponent `json:"components"`
	FinalGrade *float64         `json:"final_grade,omitempty"`
}
