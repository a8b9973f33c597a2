package actions

import (
	"context"

	"github.com/weisyn/attendance-cli/client/core/apperrors"
	"github.com/weisyn/attendance-cli/client/core/contract"
)

// DefaultDurationMinutes createSession 未指定时长时的默认值
const DefaultDurationMinutes = 30

// ========== 写操作 ==========

func createSession(ctx context.Context, provider Provider, in Payload) (interface{}, error) {
	const op = contract.MethodCreateSession

	values, err := in.strs(op, "sessionCode", "classId")
	if err != nil {
		return nil, err
	}
	sessionCode, classID := values[0], values[1]

	duration := uint64(DefaultDurationMinutes)
	if !in.blank("durationMinutes") {
		n, err := in.uint256(op, "durationMinutes")
		if err != nil {
			return nil, err
		}
		if n.Sign() == 0 || !n.IsUint64() {
			return nil, apperrors.Validation(op, "field durationMinutes must be a positive number of minutes")
		}
		duration = n.Uint64()
	}

	client, err := provider.Attendance(ctx)
	if err != nil {
		return nil, err
	}
	sub, err := client.CreateSession(ctx, sessionCode, classID, duration)
	if err != nil {
		return nil, apperrors.RemoteCall(op, err)
	}

	return &CreateSessionResult{
		Success:         true,
		TransactionHash: sub.TxHash.Hex(),
		SessionCode:     sessionCode,
		ClassID:         classID,
		DurationMinutes: duration,
		Confirmation:    confirmationOf(sub),
	}, nil
}

// markAttendance 提交前先确认会话有效且学生尚未签到，避免必然回滚的交易消耗 gas
func markAttendance(ctx context.Context, provider Provider, in Payload) (interface{}, error) {
	const op = contract.MethodMarkAttendance

	values, err := in.strs(op, "sessionCode", "studentId", "classId")
	if err != nil {
		return nil, err
	}
	sessionCode, studentID, classID := values[0], values[1], values[2]

	client, err := provider.Attendance(ctx)
	if err != nil {
		return nil, err
	}

	valid, err := client.IsSessionValid(ctx, sessionCode)
	if err != nil {
		return nil, apperrors.RemoteCall(op, err)
	}
	if !valid {
		return nil, apperrors.RemoteCallf(op, "session %s is not valid or has expired", sessionCode)
	}

	attended, err := client.HasAttended(ctx, sessionCode, studentID)
	if err != nil {
		return nil, apperrors.RemoteCall(op, err)
	}
	if attended {
		return nil, apperrors.RemoteCallf(op, "student %s has already marked attendance for session %s", studentID, sessionCode)
	}

	sub, err := client.MarkAttendance(ctx, sessionCode, studentID, classID)
	if err != nil {
		return nil, apperrors.RemoteCall(op, err)
	}

	return &MarkAttendanceResult{
		Success:         true,
		TransactionHash: sub.TxHash.Hex(),
		SessionCode:     sessionCode,
		StudentID:       studentID,
		ClassID:         classID,
		Confirmation:    confirmationOf(sub),
	}, nil
}

func authorizeTeacher(ctx context.Context, provider Provider, in Payload) (interface{}, error) {
	const op = contract.MethodAuthorizeTeacher

	teacher, err := in.address(op, "teacherAddress")
	if err != nil {
		return nil, err
	}

	client, err := provider.Attendance(ctx)
	if err != nil {
		return nil, err
	}
	sub, err := client.AuthorizeTeacher(ctx, teacher)
	if err != nil {
		return nil, apperrors.RemoteCall(op, err)
	}

	return &AuthorizeTeacherResult{
		Success:         true,
		TransactionHash: sub.TxHash.Hex(),
		TeacherAddress:  teacher.Hex(),
		Confirmation:    confirmationOf(sub),
	}, nil
}

func registerStudent(ctx context.Context, provider Provider, in Payload) (interface{}, error) {
	const op = contract.MethodRegisterStudent

	studentID, err := in.str(op, "studentId")
	if err != nil {
		return nil, err
	}
	student, err := in.address(op, "studentAddress")
	if err != nil {
		return nil, err
	}

	client, err := provider.Attendance(ctx)
	if err != nil {
		return nil, err
	}
	sub, err := client.RegisterStudent(ctx, studentID, student)
	if err != nil {
		return nil, apperrors.RemoteCall(op, err)
	}

	return &RegisterStudentResult{
		Success:         true,
		TransactionHash: sub.TxHash.Hex(),
		StudentID:       studentID,
		StudentAddress:  student.Hex(),
		Confirmation:    confirmationOf(sub),
	}, nil
}

// ========== 只读查询 ==========

func isSessionValid(ctx context.Context, provider Provider, in Payload) (interface{}, error) {
	const op = contract.MethodIsSessionValid

	sessionCode, err := in.str(op, "sessionCode")
	if err != nil {
		return nil, err
	}

	client, err := provider.Attendance(ctx)
	if err != nil {
		return nil, err
	}
	valid, err := client.IsSessionValid(ctx, sessionCode)
	if err != nil {
		return nil, apperrors.RemoteCall(op, err)
	}
	return &SessionValidityResult{Success: true, SessionCode: sessionCode, IsValid: valid}, nil
}

func hasAttended(ctx context.Context, provider Provider, in Payload) (interface{}, error) {
	const op = contract.MethodHasAttended

	values, err := in.strs(op, "sessionCode", "studentId")
	if err != nil {
		return nil, err
	}

	client, err := provider.Attendance(ctx)
	if err != nil {
		return nil, err
	}
	attended, err := client.HasAttended(ctx, values[0], values[1])
	if err != nil {
		return nil, apperrors.RemoteCall(op, err)
	}
	return &HasAttendedResult{
		Success:     true,
		SessionCode: values[0],
		StudentID:   values[1],
		HasAttended: attended,
	}, nil
}

func getAttendanceRecord(ctx context.Context, provider Provider, in Payload) (interface{}, error) {
	const op = contract.MethodGetAttendanceRecord

	values, err := in.strs(op, "sessionCode", "studentId")
	if err != nil {
		return nil, err
	}

	client, err := provider.Attendance(ctx)
	if err != nil {
		return nil, err
	}
	record, err := client.GetAttendanceRecord(ctx, values[0], values[1])
	if err != nil {
		return nil, apperrors.RemoteCall(op, err)
	}
	return &RecordResult{Success: true, Record: recordView(record)}, nil
}

func getTotalRecords(ctx context.Context, provider Provider, _ Payload) (interface{}, error) {
	const op = contract.MethodGetTotalRecords

	client, err := provider.Attendance(ctx)
	if err != nil {
		return nil, err
	}
	total, err := client.GetTotalRecords(ctx)
	if err != nil {
		return nil, apperrors.RemoteCall(op, err)
	}
	return &TotalRecordsResult{Success: true, TotalRecords: number(total)}, nil
}

func getRecordByIndex(ctx context.Context, provider Provider, in Payload) (interface{}, error) {
	const op = contract.MethodGetRecordByIndex

	index, err := in.uint256(op, "index")
	if err != nil {
		return nil, err
	}

	client, err := provider.Attendance(ctx)
	if err != nil {
		return nil, err
	}
	record, err := client.GetRecordByIndex(ctx, index)
	if err != nil {
		return nil, apperrors.RemoteCall(op, err)
	}
	return &RecordByIndexResult{Success: true, Index: number(index), Record: recordView(record)}, nil
}
