package models

// CreateUserRequest is the admin payload for provisioning an account.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required"`
}

// CreateCourseRequest is the admin payload for adding a catalog course.
type CreateCourseRequest struct {
	CourseID string `json:"course_id" validate:"required"`
	Code     string `json:"code" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Credits  int    `json:"credits" validate:"required,gte=1,lte=6"`
}

// CreateSectionRequest is the admin payload for scheduling a section.
type CreateSectionRequest struct {
	SectionID            string `json:"section_id" validate:"required"`
	CourseID             string `json:"course_id" validate:"required"`
	InstructorID         string `json:"instructor_id" validate:"required"`
	DayOfWeek            string `json:"day_of_week" validate:"required"`
	StartTime            string `json:"start_time" validate:"required"`
	EndTime              string `json:"end_time" validate:"required"`
	Room                 string `json:"room" validate:"required"`
	Capacity             int    `json:"capacity" validate:"required"`
	Semester             int    `json:"semester" validate:"required,gte=1,lte=8"`
	Year                 int    `json:"year" validate:"required"`
	RegistrationDeadline string `json:"registration_deadline" validate:"required"`
	WeightingRule        string `json:"weighting_rule"`
	ComponentNames       string `json:"component_names"`
}

// AssignInstructorRequest rebinds a section to a different instructor.
type AssignInstructorRequest struct {
	InstructorID string `json:"instructor_id" validate:"required"`
}

// StudentProfileRequest sets the academic profile for a student account.
type StudentProfileRequest struct {
	RollNumber string `json:"roll_number" validate:"required"`
	Program    string `json:"program" validate:"required"`
	Year       int    `json:"year" validate:"required,gte=1,lte=6"`
}

// InstructorProfileRequest sets the academic profile for an instructor account.
type InstructorProfileRequest struct {
	Department string `json:"department" validate:"required"`
	Title      string `json:"title" validate:"required"`
}

// LockUserRequest sets a manual lockout window in minutes.
type LockUserRequest struct {
	Minutes int `json:"minutes" validate:"required,gte=1,lte=10080"`
}

// MaintenanceRequest toggles the maintenance write gate.
type MaintenanceRequest struct {
	Enabled bool `json:"enabled"`
}
