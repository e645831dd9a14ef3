package attendance

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

var (
	uniqueStudentsTag  = "uniquestudents"
	uniqueStudentsText = "a student may only appear once"
)

// InitValidators registers the attendance payload rules. Call after core.InitValidators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(bulkAttendanceStructValidation, BulkAttendance{})
	core.RegisterCustomTranslation(validate, translator, uniqueStudentsTag, uniqueStudentsText)
}

func bulkAttendanceStructValidation(sl validator.StructLevel) {
	ba := sl.Current().Interface().(BulkAttendance)
	if len(duplicateStudents(ba.Entries())) > 0 {
		sl.ReportError(ba.Attendances, "attendances", "Attendances", uniqueStudentsTag, "")
	}
}
