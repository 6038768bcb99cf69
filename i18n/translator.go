package i18n

import (
	"strings"
	"sync/atomic"
)

// Translator retrieves localized messages for issue keys.
// data fills {placeholders} in the template (for example "min" or "expected").
type Translator interface {
	Message(key string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var en = map[string]string{
	"invalid_type":                "Expected {expected}, received {received}",
	"required":                    "Required",
	"invalid_literal":             "Invalid literal value, expected {expected}",
	"too_small.string":            "String must be at least {min} characters long",
	"too_big.string":              "String must be at most {max} characters long",
	"exact.string":                "String must be exactly {n} characters long",
	"too_small.array":             "Array must contain at least {min} element(s)",
	"too_big.array":               "Array must contain at most {max} element(s)",
	"exact.array":                 "Array must contain exactly {n} element(s)",
	"too_small.number":            "Number must be greater than or equal to {min}",
	"too_small.number.exclusive":  "Number must be greater than {min}",
	"too_big.number":              "Number must be less than or equal to {max}",
	"too_big.number.exclusive":    "Number must be less than {max}",
	"too_small.bigint":            "BigInt must be greater than or equal to {min}",
	"too_small.bigint.exclusive":  "BigInt must be greater than {min}",
	"too_big.bigint":              "BigInt must be less than or equal to {max}",
	"too_big.bigint.exclusive":    "BigInt must be less than {max}",
	"too_small.date":              "Date must be greater than or equal to {min}",
	"too_big.date":                "Date must be smaller than or equal to {max}",
	"too_small.object":            "Object must have at least {min} key(s)",
	"too_big.object":              "Object must have at most {max} key(s)",
	"invalid_format.email":        "Invalid email",
	"invalid_format.url":          "Invalid url",
	"invalid_format.uuid":         "Invalid uuid",
	"invalid_format.regex":        "String must match pattern {pattern}",
	"invalid_format.includes":     `String must include "{value}"`,
	"invalid_format.starts_with":  `String must start with "{value}"`,
	"invalid_format.ends_with":    `String must end with "{value}"`,
	"not_multiple_of.number":      "Number must be a multiple of {step}",
	"not_multiple_of.bigint":      "BigInt must be a multiple of {step}",
	"not_integer":                 "Expected integer, received float",
	"not_finite":                  "Number must be finite",
	"unrecognized_keys":           "Unrecognized key(s) in object: {keys}",
	"invalid_union":               "no union branch matched",
	"discriminator_missing":       "missing discriminator",
	"discriminator_invalid":       "invalid discriminator value",
	"custom":                      "Invalid input",
	"parse_error":                 "parse error",
	"duplicate_key":               "Duplicate key '{key}'",
}

var ja = map[string]string{
	"invalid_type":          "{expected} を期待しましたが {received} を受け取りました",
	"required":              "必須です",
	"invalid_literal":       "リテラル値が不正です。期待値: {expected}",
	"too_small.string":      "{min} 文字以上である必要があります",
	"too_big.string":        "{max} 文字以下である必要があります",
	"exact.string":          "{n} 文字である必要があります",
	"too_small.number":      "{min} 以上である必要があります",
	"too_big.number":        "{max} 以下である必要があります",
	"invalid_format.email":  "メールアドレスの形式が不正です",
	"invalid_format.url":    "URL の形式が不正です",
	"invalid_format.uuid":   "UUID の形式が不正です",
	"unrecognized_keys":     "未知のキーです: {keys}",
	"invalid_union":         "どのユニオン分岐にも一致しません",
	"discriminator_missing": "判別子がありません",
	"discriminator_invalid": "判別子の値が不正です",
	"custom":                "入力が不正です",
	"parse_error":           "解析エラー",
	"duplicate_key":         "キー '{key}' が重複しています",
}

func (t dictTranslator) Message(key string, data map[string]string) string {
	tmpl, ok := "", false
	if t.lang == "ja" {
		tmpl, ok = ja[key]
	}
	if !ok {
		tmpl, ok = en[key]
	}
	if !ok {
		return key
	}
	return fill(tmpl, data)
}

// fill replaces {name} placeholders with data values.
func fill(tmpl string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

type holder struct{ tr Translator }

var current atomic.Pointer[holder]

func init() { current.Store(&holder{tr: dictTranslator{lang: "en"}}) }

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	current.Store(&holder{tr: dictTranslator{lang: lang}})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores the English dictionary.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	current.Store(&holder{tr: tr})
}

// T fetches a message for the given key using the current Translator.
func T(key string, data map[string]string) string { return current.Load().tr.Message(key, data) }
