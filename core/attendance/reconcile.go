package attendance

import (
	"fmt"
	"sort"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
)

// duplicateStudents returns the sorted ids submitted more than once.
func duplicateStudents(entries []Entry) []int {
	seen := make(core.IDSet, len(entries))
	dups := make(core.IDSet)
	for _, e := range entries {
		if seen.Has(e.StudentID) {
			dups[e.StudentID] = struct{}{}
		}
		seen[e.StudentID] = struct{}{}
	}
	return dups.Slice()
}

func submittedIDs(entries []Entry) core.IDSet {
	set := make(core.IDSet, len(entries))
	for _, e := range entries {
		set[e.StudentID] = struct{}{}
	}
	return set
}

// checkEntries validates a submission against the class roster.
// Submitted students must all be on the roster; with fullCoverage, every roster
// student must also be submitted.
func checkEntries(entries []Entry, roster []student.Student, fullCoverage bool) error {
	if dups := duplicateStudents(entries); len(dups) > 0 {
		return core.NewInvalidOperationError(
			fmt.Sprintf("Students with IDs %s were submitted more than once", core.JoinIDs(dups)), dups...,
		)
	}

	rosterIDs := core.NewIDSet(student.IDs(roster)...)
	submitted := submittedIDs(entries)

	if fullCoverage {
		if missing := rosterIDs.Missing(submitted); len(missing) > 0 {
			return core.NewInvalidOperationError(
				fmt.Sprintf("Missing attendance records for students with IDs: %s", core.JoinIDs(missing)), missing...,
			)
		}
	}
	if invalid := submitted.Missing(rosterIDs); len(invalid) > 0 {
		return core.NewInvalidOperationError(
			fmt.Sprintf("Students with IDs %s do not belong to this course class", core.JoinIDs(invalid)), invalid...,
		)
	}
	return nil
}

// merge applies entries over the existing rows of a lesson.
// Entries of students that already have a row update it in place, the others become new rows.
func merge(lessonID int, entries []Entry, existing []Attendance) (updated, created []Attendance) {
	byStudent := make(map[int]Attendance, len(existing))
	for _, att := range existing {
		byStudent[att.StudentID] = att
	}

	for _, e := range entries {
		if att, ok := byStudent[e.StudentID]; ok {
			att.Present = e.Present
			att.Notes = e.Notes
			updated = append(updated, att)
			continue
		}
		created = append(created, newRow(lessonID, e))
	}
	return updated, created
}

func newRow(lessonID int, e Entry) Attendance {
	return Attendance{
		LessonID:  lessonID,
		StudentID: e.StudentID,
		Present:   e.Present,
		Notes:     e.Notes,
	}
}

// inSubmissionOrder sorts saved rows the way their entries were submitted.
func inSubmissionOrder(entries []Entry, saved []Attendance) []Attendance {
	pos := make(map[int]int, len(entries))
	for i, e := range entries {
		pos[e.StudentID] = i
	}
	sort.SliceStable(saved, func(i, j int) bool {
		return pos[saved[i].StudentID] < pos[saved[j].StudentID]
	})
	return saved
}

func attachStudents(atts []Attendance, roster []student.Student) {
	byID := make(map[int]student.Student, len(roster))
	for _, s := range roster {
		byID[s.ID] = s
	}
	for i := range atts {
		if s, ok := byID[atts[i].StudentID]; ok {
			s := s
			atts[i].Student = &s
		}
	}
}
