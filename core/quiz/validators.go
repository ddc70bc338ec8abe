package quiz

import (
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mtihani/core"
)

var (
	letterTag   = "letter"
	letterText  = "must be a single letter from a to z"
	letterRegex = regexp.MustCompile(`^[a-z]$`)

	oneCorrectTag  = "onecorrect"
	oneCorrectText = "exactly one option must be marked correct"

	uniqueLettersTag  = "uniqueletters"
	uniqueLettersText = "option letters must be unique"

	notBlankTag  = "notblank"
	notBlankText = "this field is required"
)

// InitValidators registers the quiz validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(letterTag, letterValidation)
	core.RegisterCustomTranslation(validate, translator, letterTag, letterText)

	validate.RegisterStructValidation(questionStructValidation, NewQuestion{})
	core.RegisterCustomTranslation(validate, translator, oneCorrectTag, oneCorrectText)
	core.RegisterCustomTranslation(validate, translator, uniqueLettersTag, uniqueLettersText)
	core.RegisterCustomTranslation(validate, translator, notBlankTag, notBlankText)
}

// Custom Validators

// letterValidation only allows a single lowercase letter.
func letterValidation(fl validator.FieldLevel) bool {
	return letterRegex.MatchString(fl.Field().String())
}

// questionStructValidation does struct level validation on NewQuestion:
// - subject must not be blank
// - option letters are unique
// - exactly one option is correct
func questionStructValidation(sl validator.StructLevel) {
	q, ok := sl.Current().Interface().(NewQuestion)
	if !ok {
		return
	}

	if q.Subject != "" && strings.TrimSpace(q.Subject) == "" {
		sl.ReportError(q.Subject, "subject", "Subject", notBlankTag, "")
	}
	if len(q.Options) == 0 {
		return // reported by the field validators
	}

	seen := make(map[string]struct{}, len(q.Options))
	for _, opt := range q.Options {
		if _, dup := seen[opt.Letter]; dup && opt.Letter != "" {
			sl.ReportError(q.Options, "options", "Options", uniqueLettersTag, "")
			break
		}
		seen[opt.Letter] = struct{}{}
	}

	var correct int
	for _, opt := range q.Options {
		if opt.Correct {
			correct++
		}
	}
	if correct != 1 {
		sl.ReportError(q.Options, "options", "Options", oneCorrectTag, "")
	}
}
