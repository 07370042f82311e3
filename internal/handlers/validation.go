package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validationOnce sync.Once
	translator     ut.Translator
)

// SetupValidation configures gin's validator once: field errors are keyed
// by JSON name, messages are translated to English and Money validates as
// a number.
func SetupValidation() {
	validationOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			switch name {
			case "-":
				return ""
			case "":
				return f.Name
			}
			return name
		})

		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if m, ok := field.Interface().(models.Money); ok {
				f, _ := m.Float64()
				return f
			}
			return nil
		}, models.Money{})

		english := en.New()
		translator, _ = ut.New(english, english).GetTranslator("en")
		_ = entranslations.RegisterDefaultTranslations(v, translator)
	})
}

// bindJSON decodes and validates the body, writing the 400 itself on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondValidation(c, err)
		return false
	}
	return true
}

func respondValidation(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if translator != nil {
			fields[fe.Field()] = fe.Translate(translator)
		} else {
			fields[fe.Field()] = fe.Error()
		}
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
}
