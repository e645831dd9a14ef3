package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
)

func roster(ids ...int) []student.Student {
	students := make([]student.Student, 0, len(ids))
	for _, id := range ids {
		students = append(students, student.Student{ID: id})
	}
	return students
}

func entries(ids ...int) []Entry {
	es := make([]Entry, 0, len(ids))
	for _, id := range ids {
		es = append(es, Entry{StudentID: id, Present: true})
	}
	return es
}

func Test_checkEntries(t *testing.T) {
	tests := []struct {
		name         string
		entries      []Entry
		roster       []student.Student
		fullCoverage bool
		wantIDs      []int // nil: no error
	}{
		{name: "exact roster", entries: entries(1, 2, 3), roster: roster(1, 2, 3), fullCoverage: true},
		{name: "missing", entries: entries(1, 2), roster: roster(1, 2, 3), fullCoverage: true, wantIDs: []int{3}},
		{name: "missing many (sorted)", entries: entries(2), roster: roster(5, 1, 3, 2), fullCoverage: true, wantIDs: []int{1, 3, 5}},
		{name: "invalid", entries: entries(1, 2, 3, 4), roster: roster(1, 2, 3), fullCoverage: true, wantIDs: []int{4}},
		{name: "missing before invalid", entries: entries(1, 4), roster: roster(1, 2), fullCoverage: true, wantIDs: []int{2}},
		{name: "partial", entries: entries(2), roster: roster(1, 2, 3)},
		{name: "partial invalid", entries: entries(2, 9, 7), roster: roster(1, 2, 3), wantIDs: []int{7, 9}},
		{name: "duplicates", entries: entries(1, 2, 1, 2, 3), roster: roster(1, 2, 3), wantIDs: []int{1, 2}},
		{name: "empty roster", entries: entries(1), roster: roster(), fullCoverage: true, wantIDs: []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkEntries(tt.entries, tt.roster, tt.fullCoverage)
			if tt.wantIDs == nil {
				assert.NoError(t, err)
				return
			}
			if assert.True(t, core.IsInvalidOperation(err)) {
				assert.Equal(t, tt.wantIDs, err.(*core.InvalidOperationError).IDs)
			}
		})
	}
}

func Test_merge(t *testing.T) {
	existing := []Attendance{
		{ID: 11, LessonID: 5, StudentID: 1, Present: true},
		{ID: 12, LessonID: 5, StudentID: 2, Present: true, Notes: null.StringFrom("ok")},
	}
	submitted := []Entry{
		{StudentID: 2, Present: false},
		{StudentID: 3, Present: true, Notes: null.StringFrom("new")},
	}

	updated, created := merge(5, submitted, existing)

	assert.Equal(t, []Attendance{{ID: 12, LessonID: 5, StudentID: 2, Present: false}}, updated)
	assert.Equal(t, []Attendance{{LessonID: 5, StudentID: 3, Present: true, Notes: null.StringFrom("new")}}, created)
}

func Test_inSubmissionOrder(t *testing.T) {
	saved := []Attendance{{ID: 1, StudentID: 10}, {ID: 2, StudentID: 20}, {ID: 3, StudentID: 30}}
	got := inSubmissionOrder(entries(30, 10, 20), saved)
	assert.Equal(t, []int{30, 10, 20}, []int{got[0].StudentID, got[1].StudentID, got[2].StudentID})
}
