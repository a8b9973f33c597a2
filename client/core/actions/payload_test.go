package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/attendance-cli/client/core/apperrors"
)

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantLen int
		wantErr bool
	}{
		{"empty", "", 0, false},
		{"whitespace", "  \n", 0, false},
		{"empty object", "{}", 0, false},
		{"object", `{"sessionCode": "S1", "durationMinutes": 30}`, 2, false},
		{"array", `["S1"]`, 0, true},
		{"string", `"S1"`, 0, true},
		{"broken", `{"sessionCode": `, 0, true},
		{"trailing data", `{} {}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePayload("createSession", tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.Is(err, apperrors.KindValidation))
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, p)
			assert.Len(t, p, tt.wantLen)
		})
	}
}

func TestPayload_Uint256(t *testing.T) {
	p, err := ParsePayload("op", `{"a": 7, "b": " 8 ", "c": "0x10", "d": 1e3}`)
	require.NoError(t, err)

	n, err := p.uint256("op", "a")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n.Int64())

	n, err = p.uint256("op", "b")
	require.NoError(t, err)
	assert.Equal(t, int64(8), n.Int64())

	_, err = p.uint256("op", "c")
	assert.Error(t, err)
	_, err = p.uint256("op", "d")
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{
		"createSession", "markAttendance", "isSessionValid", "hasAttended",
		"getAttendanceRecord", "getTotalRecords", "getRecordByIndex",
		"authorizeTeacher", "registerStudent",
	}, Names())

	a, ok := Lookup("markAttendance")
	require.True(t, ok)
	assert.True(t, a.Mutating)

	_, ok = Lookup("frobnicate")
	assert.False(t, ok)
	_, ok = Lookup("CreateSession")
	assert.False(t, ok)
}

func TestPrepare(t *testing.T) {
	action, payload, err := Prepare("createSession", `{"sessionCode":"S1","classId":"C1"}`)
	require.NoError(t, err)
	assert.Equal(t, "createSession", action.Name)
	assert.Len(t, payload, 2)

	_, _, err = Prepare("frobnicate", "{}")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindUnknownAction))

	_, _, err = Prepare("createSession", "{}")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
	assert.Contains(t, err.Error(), "sessionCode")
	assert.Contains(t, err.Error(), "classId")

	_, _, err = Prepare("getTotalRecords", "")
	assert.NoError(t, err)
}
