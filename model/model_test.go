package model

import "testing"

func TestTeacherIsAssignedTo(t *testing.T) {
	teacher := Teacher{
		Name: "Ms. Patel",
		AssignedCourses: []Course{
			{ID: 1, Code: "CS101"},
			{ID: 3, Code: "MA201"},
		},
	}

	if !teacher.IsAssignedTo(1) {
		t.Error("expected assignment to course 1")
	}
	if !teacher.IsAssignedTo(3) {
		t.Error("expected assignment to course 3")
	}
	if teacher.IsAssignedTo(2) {
		t.Error("did not expect assignment to course 2")
	}

	var unassigned Teacher
	if unassigned.IsAssignedTo(1) {
		t.Error("teacher with no courses should not be assigned to anything")
	}
}

func TestAttendanceStatusValid(t *testing.T) {
	if !StatusPresent.Valid() || !StatusAbsent.Valid() {
		t.Error("Present and Absent must be valid statuses")
	}
	if AttendanceStatus("Late").Valid() {
		t.Error("Late is not a valid status")
	}
	if AttendanceStatus("").Valid() {
		t.Error("empty status is not valid")
	}
}
