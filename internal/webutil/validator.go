package webutil

import (
	"log"
	"reflect"
	"strings"

	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// Validator is shared by every handler.
var Validator *validator.Validate

// Trans renders validation errors in Chinese, the language of the app.
var Trans ut.Translator

var fieldNameTranslations = map[string]string{
	"imageBase64": "图片数据",
	"item":        "历史记录",
	"id":          "编号",
	"wordParse":   "单词解析",
	"status":      "学习状态",
}

func init() {
	Validator = validator.New()

	Validator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	chinese := zh.New()
	uni := ut.New(chinese, chinese)
	var found bool
	Trans, found = uni.GetTranslator("zh")
	if !found {
		log.Fatal("translator not found")
	}

	if err := zh_translations.RegisterDefaultTranslations(Validator, Trans); err != nil {
		log.Fatal(err)
	}

	registerTranslation("required", "{0}为必填项")
	registerTranslation("oneof", "{0}必须是[{1}]中的一个")
}

// registerTranslation overrides the message for tag, substituting the
// translated field name for {0} and the tag parameter for {1}.
func registerTranslation(tag, msg string) {
	Validator.RegisterTranslation(tag, Trans, func(ut ut.Translator) error {
		return ut.Add(tag, msg, true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T(tag, translateField(fe.Field()), fe.Param())
		return t
	})
}

func translateField(name string) string {
	if translated, ok := fieldNameTranslations[name]; ok {
		return translated
	}
	return name
}
