package core

import (
	"reflect"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	requiredTag            = "required"
	requiredWithoutTag     = "required_without"
	requiredText           = "this field is required"
	requiredWithoutText    = "one of text or image is required"
	uuidTag                = "uuid"
	uuidText               = "must be a valid identifier"
	oneOfTag               = "oneof"
	oneOfText              = "must be one of: {0}"
	minItemsTag            = "min"
	minItemsText           = "at least {0} item(s) required"
	errorFieldNameReplacer = strings.NewReplacer("[", ".", "]", "")
)

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithoutTag, requiredWithoutText, true)
	RegisterCustomTranslation(validate, translator, uuidTag, uuidText, true)
	registerParamTranslation(validate, translator, oneOfTag, oneOfText)
	registerParamTranslation(validate, translator, minItemsTag, minItemsText)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// registerParamTranslation overrides the translation of a tag whose text embeds the tag param as {0}.
func registerParamTranslation(validate *validator.Validate, translator ut.Translator, tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Param())
			return s
		},
	)
}

// TranslateValidationErrors maps validation errors to {field path: message}.
// Field paths drop the struct root: "NewQuiz.questions[1].options" -> "questions.1.options".
func TranslateValidationErrors(errs validator.ValidationErrors, translator ut.Translator) map[string]string {
	fldErrs := make(map[string]string, len(errs))
	for _, vErr := range errs {
		field := vErr.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		fldErrs[errorFieldNameReplacer.Replace(field)] = vErr.Translate(translator)
	}
	return fldErrs
}
