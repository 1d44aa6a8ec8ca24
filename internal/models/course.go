package models

import "time"

// Course is a catalog entry; Sections reference it.
type Course struct {
	CourseID string `db:"course_id" json:"course_id"`
	Code     string `db:"code" json:"code"`
	Title    string `db:"title" json:"title"`
	Credits  int    `db:"credits" json:"credits"`
}

// Section is one scheduled offering of a Course. Start and end times use the
// zero-padded "15:04" wall-clock format so lexicographic order matches
// chronological order.
type Section struct {
	SectionID            string    `db:"section_id" json:"section_id"`
	CourseID             string    `db:"course_id" json:"course_id"`
	InstructorID         string    `db:"instructor_id" json:"instructor_id"`
	DayOfWeek            string    `db:"day_of_week" json:"day_of_week"`
	StartTime            string    `db:"start_time" json:"start_time"`
	EndTime              string    `db:"end_time" json:"end_time"`
	Room                 string    `db:"room" json:"room"`
	Capacity             int       `db:"capacity" json:"capacity"`
	Semester             int       `db:"semester" json:"semester"`
	Year                 int       `db:"academic_year" json:"year"`
	RegistrationDeadline time.Time `db:"registration_deadline" json:"registration_deadline"`
	WeightingRule        string    `db:"weighting_rule" json:"weighting_rule,omitempty"`
	ComponentNames       string    `db:"component_names" json:"component_names,omitempty"`
}

// Schedule renders the section slot as "DAY 09:00-10:30".
func (s Section) Schedule() string {
	return s.DayOfWeek + " " + s.StartTime + "-" + s.EndTime
}

// CatalogRow is the read model for the course catalog view.
type CatalogRow struct {
	SectionID   string `json:"section_id"`
	CourseCode  string `json:"course_code"`
	CourseTitle string `json:"course_title"`
	Credits     int    `json:"credits"`
	Instructor  string `json:"instructor"`
	Schedule    string `json:"schedule"`
	Capacity    int    `json:"capacity"`
	SeatsTaken  int    `json:"seats_taken"`
}

// TimetableEntry is one row of a student's weekly timetable.
type TimetableEntry struct {
	Day        string `json:"day"`
	TimeRange  string `json:"time_range"`
	CourseCode string `json:"course_code"`
	SectionID  string `json:"section_id"`
	Room       string `json:"room"`
}
