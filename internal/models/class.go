package models

// Class is one (grade, class number) section for one school year. Students are
// matched to it through their own grade/class_num fields, mirroring how the
// enrollment data arrives from the school office.
type Class struct {
	ID                int64  `db:"id"`
	SchoolYear        int    `db:"school_year"`
	Grade             int    `db:"grade"`
	Number            int    `db:"number"`
	HomeroomTeacherID *int64 `db:"homeroom_teacher_id"`
	IsCurrent         bool   `db:"is_current"`
}
