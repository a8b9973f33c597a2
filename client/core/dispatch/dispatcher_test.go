package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/weisyn/attendance-cli/client/core/apperrors"
	"github.com/weisyn/attendance-cli/client/core/contract"
	"github.com/weisyn/attendance-cli/client/core/output"
)

// fakeClient 固定返回值的合约客户端
type fakeClient struct {
	total    *big.Int
	panicMsg string
	created  [][]interface{}
}

func (f *fakeClient) CreateSession(ctx context.Context, sessionCode, classID string, durationMinutes uint64) (*contract.Submission, error) {
	f.created = append(f.created, []interface{}{sessionCode, classID, durationMinutes})
	return &contract.Submission{TxHash: common.HexToHash("0x01")}, nil
}

func (f *fakeClient) MarkAttendance(ctx context.Context, sessionCode, studentID, classID string) (*contract.Submission, error) {
	return &contract.Submission{TxHash: common.HexToHash("0x02")}, nil
}

func (f *fakeClient) AuthorizeTeacher(ctx context.Context, teacher common.Address) (*contract.Submission, error) {
	return &contract.Submission{TxHash: common.HexToHash("0x03")}, nil
}

func (f *fakeClient) RegisterStudent(ctx context.Context, studentID string, student common.Address) (*contract.Submission, error) {
	return &contract.Submission{TxHash: common.HexToHash("0x04")}, nil
}

func (f *fakeClient) IsSessionValid(ctx context.Context, sessionCode string) (bool, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return true, nil
}

func (f *fakeClient) HasAttended(ctx context.Context, sessionCode, studentID string) (bool, error) {
	return false, nil
}

func (f *fakeClient) GetAttendanceRecord(ctx context.Context, sessionCode, studentID string) (*contract.Record, error) {
	return &contract.Record{SessionCode: sessionCode, StudentId: studentID, Timestamp: big.NewInt(1)}, nil
}

func (f *fakeClient) GetTotalRecords(ctx context.Context) (*big.Int, error) {
	return f.total, nil
}

func (f *fakeClient) GetRecordByIndex(ctx context.Context, index *big.Int) (*contract.Record, error) {
	return &contract.Record{Timestamp: big.NewInt(1)}, nil
}

type fakeProvider struct {
	client *fakeClient
	err    error
	calls  int
}

func (p *fakeProvider) Attendance(ctx context.Context) (contract.Attendance, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.client, nil
}

func newDispatcher(t *testing.T, p *fakeProvider) (*Dispatcher, *bytes.Buffer, *observer.ObservedLogs) {
	t.Helper()
	var stdout bytes.Buffer
	core, logs := observer.New(zap.DebugLevel)
	f := output.NewFormatter(&stdout)
	f.SetIncludeStack(true)
	return New(p, f, zap.New(core)), &stdout, logs
}

// singleObject 断言结果流上恰好有一个 JSON 对象
func singleObject(t *testing.T, stdout *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	require.Len(t, lines, 1, stdout.String())
	var obj map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &obj))
	return obj
}

func TestDispatch_Success(t *testing.T) {
	p := &fakeProvider{client: &fakeClient{total: big.NewInt(42)}}
	d, stdout, logs := newDispatcher(t, p)
	assert.Equal(t, StateDispatching, d.State())

	code := d.Dispatch(context.Background(), "getTotalRecords", "")
	assert.Equal(t, ExitOK, code)
	assert.Equal(t, StateTerminated, d.State())

	obj := singleObject(t, stdout)
	assert.Equal(t, true, obj["success"])
	assert.Equal(t, float64(42), obj["totalRecords"])

	_, err := uuid.Parse(d.InvocationID())
	require.NoError(t, err)
	for _, entry := range logs.All() {
		assert.Equal(t, d.InvocationID(), entry.ContextMap()["invocation"])
	}
}

func TestDispatch_CreateSessionDefaults(t *testing.T) {
	client := &fakeClient{}
	d, stdout, _ := newDispatcher(t, &fakeProvider{client: client})

	code := d.Dispatch(context.Background(), "createSession", `{"sessionCode":"S1","classId":"C1"}`)
	require.Equal(t, ExitOK, code)

	require.Len(t, client.created, 1)
	assert.Equal(t, []interface{}{"S1", "C1", uint64(30)}, client.created[0])
	assert.Equal(t, float64(30), singleObject(t, stdout)["durationMinutes"])
}

func TestDispatch_UnknownAction(t *testing.T) {
	p := &fakeProvider{client: &fakeClient{}}
	d, stdout, logs := newDispatcher(t, p)

	code := d.Dispatch(context.Background(), "frobnicate", `{}`)
	assert.Equal(t, ExitFailure, code)
	assert.Equal(t, StateTerminated, d.State())

	obj := singleObject(t, stdout)
	assert.Equal(t, false, obj["success"])
	assert.Contains(t, obj["error"], "Unknown action")
	assert.Contains(t, obj["error"], "frobnicate")
	assert.Equal(t, string(apperrors.KindUnknownAction), obj["errorType"])
	assert.Zero(t, p.calls)
	assert.Equal(t, 1, logs.FilterMessage("action failed").Len())
}

func TestDispatch_Failures(t *testing.T) {
	tests := []struct {
		name    string
		action  string
		payload string
		kind    apperrors.Kind
		calls   int
	}{
		{"missing field", "isSessionValid", `{}`, apperrors.KindValidation, 0},
		{"payload not object", "isSessionValid", `["S1"]`, apperrors.KindValidation, 0},
		{"payload not json", "isSessionValid", `sessionCode=S1`, apperrors.KindValidation, 0},
		{"configuration", "getTotalRecords", ``, apperrors.KindConfiguration, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{client: &fakeClient{}}
			if tt.kind == apperrors.KindConfiguration {
				p.err = apperrors.Configuration("contract address not configured")
			}
			d, stdout, _ := newDispatcher(t, p)

			assert.Equal(t, ExitFailure, d.Dispatch(context.Background(), tt.action, tt.payload))
			obj := singleObject(t, stdout)
			assert.Equal(t, false, obj["success"])
			assert.Equal(t, string(tt.kind), obj["errorType"])
			assert.NotEmpty(t, obj["stack"])
			assert.Equal(t, tt.calls, p.calls)
		})
	}
}

func TestDispatch_RecoversPanic(t *testing.T) {
	p := &fakeProvider{client: &fakeClient{panicMsg: "boom"}}
	d, stdout, _ := newDispatcher(t, p)

	code := d.Dispatch(context.Background(), "isSessionValid", `{"sessionCode":"S1"}`)
	assert.Equal(t, ExitFailure, code)

	obj := singleObject(t, stdout)
	assert.Equal(t, string(apperrors.KindInternal), obj["errorType"])
	assert.Contains(t, obj["error"], "boom")
}

func TestDispatcher_Fail(t *testing.T) {
	d, stdout, _ := newDispatcher(t, &fakeProvider{client: &fakeClient{total: big.NewInt(1)}})

	code := d.Fail(apperrors.Validation("", "accepts between 1 and 2 arg(s), received 0"))
	assert.Equal(t, ExitFailure, code)
	assert.Equal(t, StateTerminated, d.State())
	assert.Equal(t, "ValidationError", singleObject(t, stdout)["errorType"])

	// 已终止后再次输出不会产生第二个对象
	d.Dispatch(context.Background(), "getTotalRecords", "")
	singleObject(t, stdout)
}
