package actions

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"

	"github.com/weisyn/attendance-cli/client/core/contract"
)

type mockAttendance struct {
	mock.Mock
}

var _ contract.Attendance = (*mockAttendance)(nil)

func (m *mockAttendance) CreateSession(ctx context.Context, sessionCode, classID string, durationMinutes uint64) (*contract.Submission, error) {
	args := m.Called(ctx, sessionCode, classID, durationMinutes)
	return submission(args)
}

func (m *mockAttendance) MarkAttendance(ctx context.Context, sessionCode, studentID, classID string) (*contract.Submission, error) {
	args := m.Called(ctx, sessionCode, studentID, classID)
	return submission(args)
}

func (m *mockAttendance) AuthorizeTeacher(ctx context.Context, teacher common.Address) (*contract.Submission, error) {
	args := m.Called(ctx, teacher)
	return submission(args)
}

func (m *mockAttendance) RegisterStudent(ctx context.Context, studentID string, student common.Address) (*contract.Submission, error) {
	args := m.Called(ctx, studentID, student)
	return submission(args)
}

func (m *mockAttendance) IsSessionValid(ctx context.Context, sessionCode string) (bool, error) {
	args := m.Called(ctx, sessionCode)
	return args.Bool(0), args.Error(1)
}

func (m *mockAttendance) HasAttended(ctx context.Context, sessionCode, studentID string) (bool, error) {
	args := m.Called(ctx, sessionCode, studentID)
	return args.Bool(0), args.Error(1)
}

func (m *mockAttendance) GetAttendanceRecord(ctx context.Context, sessionCode, studentID string) (*contract.Record, error) {
	args := m.Called(ctx, sessionCode, studentID)
	return record(args)
}

func (m *mockAttendance) GetTotalRecords(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.(*big.Int), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAttendance) GetRecordByIndex(ctx context.Context, index *big.Int) (*contract.Record, error) {
	args := m.Called(ctx, index)
	return record(args)
}

func submission(args mock.Arguments) (*contract.Submission, error) {
	if v := args.Get(0); v != nil {
		return v.(*contract.Submission), args.Error(1)
	}
	return nil, args.Error(1)
}

func record(args mock.Arguments) (*contract.Record, error) {
	if v := args.Get(0); v != nil {
		return v.(*contract.Record), args.Error(1)
	}
	return nil, args.Error(1)
}

// stubProvider 记录客户端被请求的次数
type stubProvider struct {
	client *mockAttendance
	err    error
	calls  int
}

func (p *stubProvider) Attendance(ctx context.Context) (contract.Attendance, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.client, nil
}

func newStub() *stubProvider {
	return &stubProvider{client: &mockAttendance{}}
}
