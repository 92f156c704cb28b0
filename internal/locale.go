package courier

import (
	"net/http"

	"golang.org/x/text/language"
)

type Lang string

const (
	LangEnglish Lang = "en"
	LangPersian Lang = "fa"
)

var langMatcher = language.NewMatcher([]language.Tag{language.English, language.Persian})

// LangFromRequest picks the closest supported language from Accept-Language,
// falling back to English.
func LangFromRequest(r *http.Request) Lang {
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return LangEnglish
	}
	tag, _, conf := langMatcher.Match(tags...)
	if conf == language.No {
		return LangEnglish
	}
	if base, _ := tag.Base(); base.String() == string(LangPersian) {
		return LangPersian
	}
	return LangEnglish
}

// fieldMessages is keyed by language, then "<field>.<tag>".
var fieldMessages = map[Lang]map[string]string{
	LangEnglish: {
		"name.required":    "Name must be at least 2 characters.",
		"name.min":         "Name must be at least 2 characters.",
		"name.max":         "Name must be at most 80 characters.",
		"email.required":   "Email address is not valid.",
		"email.email":      "Email address is not valid.",
		"message.required": "Message must be at least 10 characters.",
		"message.min":      "Message must be at least 10 characters.",
		"message.max":      "Message must be at most 2000 characters.",
	},
	LangPersian: {
		"name.required":    "نام باید حداقل ۲ کاراکتر باشد",
		"name.min":         "نام باید حداقل ۲ کاراکتر باشد",
		"name.max":         "نام نباید بیشتر از ۸۰ کاراکتر باشد",
		"email.required":   "آدرس ایمیل معتبر نیست",
		"email.email":      "آدرس ایمیل معتبر نیست",
		"message.required": "پیام باید حداقل ۱۰ کاراکتر باشد",
		"message.min":      "پیام باید حداقل ۱۰ کاراکتر باشد",
		"message.max":      "پیام نباید بیشتر از ۲۰۰۰ کاراکتر باشد",
	},
}

func fieldMessage(lang Lang, field, tag string) string {
	msgs, ok := fieldMessages[lang]
	if !ok {
		msgs = fieldMessages[LangEnglish]
	}
	if m, ok := msgs[field+"."+tag]; ok {
		return m
	}
	return fieldMessages[LangEnglish][field+".required"]
}
