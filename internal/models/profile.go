package models

// Student is the academic profile paired 1:1 with a STUDENT auth record.
type Student struct {
	UserID     string `db:"user_id" json:"user_id"`
	RollNumber string `db:"roll_number" json:"roll_number"`
	Program    string `db:"program" json:"program"`
	Year       int    `db:"year" json:"year"`
}

// Instructor is the academic profile paired 1:1 with an INSTRUCTOR auth record.
type Instructor struct {
	UserID     string `db:"user_id" json:"user_id"`
	Department string `db:"department" json:"department"`
	Title      string `db:"title" json:"title"`
}
