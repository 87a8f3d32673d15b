package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/charlesng35/teamcal/internal/models"
	appErrors "github.com/charlesng35/teamcal/pkg/errors"
	"github.com/charlesng35/teamcal/pkg/response"
	appValidator "github.com/charlesng35/teamcal/pkg/validator"
)

var registerOnce sync.Once

// registerValidators installs the request-level rules that depend on domain types.
func registerValidators() {
	registerOnce.Do(func() {
		_ = appValidator.RegisterValidation("membercolor", func(fl validator.FieldLevel) bool {
			return models.IsMemberColor(strings.ToLower(strings.TrimSpace(fl.Field().String())))
		})
	})
}

// bindAndValidate binds the JSON payload into dest and runs struct validation rules.
// When validation fails, an error response is automatically written and false is returned.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	registerValidators()

	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest(formatValidationError(err)))
		return false
	}

	return true
}

func formatValidationError(err error) string {
	if err == nil {
		return "invalid request payload"
	}

	ve, ok := err.(appValidator.ValidationErrors)
	if !ok || len(ve) == 0 {
		return "invalid request payload"
	}

	messages := make([]string, 0, len(ve))
	for _, failure := range ve {
		field := prettifyFieldName(failure.Field)
		switch failure.Tag {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s characters", field, failure.Param))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", field, failure.Param))
		case "hhmm", "clearable_hhmm":
			messages = append(messages, fmt.Sprintf("%s must use the 24 hour HH:MM format", field))
		case "isodate":
			messages = append(messages, fmt.Sprintf("%s must be a YYYY-MM-DD date", field))
		case "membercolor":
			messages = append(messages, fmt.Sprintf("%s must be one of %s", field, strings.Join(models.MemberColors, ", ")))
		default:
			if failure.Param != "" {
				messages = append(messages, fmt.Sprintf("%s failed validation: %s=%s", field, failure.Tag, failure.Param))
			} else {
				messages = append(messages, fmt.Sprintf("%s failed validation: %s", field, failure.Tag))
			}
		}
	}
	return strings.Join(messages, "; ")
}

func prettifyFieldName(name string) string {
	if name == "" {
		return "field"
	}
	name = strings.ReplaceAll(name, "_", " ")
	return strings.ToLower(name)
}

// parseDateParam parses an optional YYYY-MM-DD value. Blank input yields the zero date.
func parseDateParam(value string) (models.Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return models.Date{}, nil
	}
	day, err := models.ParseDate(value)
	if err != nil {
		return models.Date{}, appErrors.NewBadRequest("date must be a YYYY-MM-DD date")
	}
	return day, nil
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
