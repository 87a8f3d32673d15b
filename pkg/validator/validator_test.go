package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type memberPayload struct {
	Nickname string `json:"nickname" validate:"required,max=50"`
	Color    string `json:"color" validate:"omitempty,oneof=blue green"`
}

type slotPayload struct {
	Date      string  `json:"date" validate:"required,isodate"`
	StartTime string  `json:"start_time" validate:"required,hhmm"`
	EndTime   *string `json:"end_time" validate:"omitempty,hhmm"`
}

func TestValidateStructSuccess(t *testing.T) {
	require.NoError(t, ValidateStruct(memberPayload{Nickname: "alice", Color: "green"}))
}

func TestValidateStructFailures(t *testing.T) {
	err := ValidateStruct(memberPayload{Nickname: "", Color: "magenta"})
	require.Error(t, err)

	vErrs, ok := err.(ValidationErrors)
	require.True(t, ok, "expected ValidationErrors, got %T", err)
	require.Len(t, vErrs, 2)

	fields := []string{vErrs[0].Field, vErrs[1].Field}
	require.ElementsMatch(t, []string{"nickname", "color"}, fields)
	require.Contains(t, err.Error(), "color failed on oneof=blue green")
}

func TestClockAndDateRules(t *testing.T) {
	end := "17:30"
	require.NoError(t, ValidateStruct(slotPayload{Date: "2024-02-29", StartTime: "09:00", EndTime: &end}))
	require.NoError(t, ValidateStruct(slotPayload{Date: "2024-01-01", StartTime: "00:00"}))

	bad := "24:00"
	cases := []slotPayload{
		{Date: "2023-02-29", StartTime: "09:00"},
		{Date: "2024/01/01", StartTime: "09:00"},
		{Date: "2024-01-01", StartTime: "9:00"},
		{Date: "2024-01-01", StartTime: "09:60"},
		{Date: "2024-01-01", StartTime: "09:00", EndTime: &bad},
	}
	for _, payload := range cases {
		require.Error(t, ValidateStruct(payload), "payload %+v", payload)
	}
}

type eventTimesPayload struct {
	StartTime *string `json:"start_time" validate:"omitempty,clearable_hhmm"`
	EndTime   *string `json:"end_time" validate:"omitempty,clearable_hhmm"`
}

func TestClearableClockAcceptsBlank(t *testing.T) {
	blank, valid, bad := "", "08:15", "8:15"
	require.NoError(t, ValidateStruct(eventTimesPayload{}))
	require.NoError(t, ValidateStruct(eventTimesPayload{StartTime: &blank, EndTime: &blank}))
	require.NoError(t, ValidateStruct(eventTimesPayload{StartTime: &valid, EndTime: &blank}))
	require.Error(t, ValidateStruct(eventTimesPayload{StartTime: &bad}))

	// the strict rule still rejects a present blank value
	require.Error(t, ValidateStruct(slotPayload{Date: "2024-01-01", StartTime: "09:00", EndTime: &blank}))
}

func TestIsClock(t *testing.T) {
	require.True(t, IsClock("23:59"))
	require.False(t, IsClock("7:00"))
	require.False(t, IsClock(""))
}

func TestRegisterValidation(t *testing.T) {
	err := RegisterValidation("teamcal", func(fl validator.FieldLevel) bool {
		return fl.Field().String() == "teamcal"
	})
	require.NoError(t, err)

	type custom struct {
		Value string `validate:"teamcal"`
	}

	require.NoError(t, ValidateStruct(custom{Value: "teamcal"}))
	require.Error(t, ValidateStruct(custom{Value: "other"}))
}
