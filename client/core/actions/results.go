package actions

import (
	"encoding/json"
	"math/big"

	"github.com/weisyn/attendance-cli/client/core/contract"
)

// Confirmation 等待确认模式下附加的回执信息，submit 模式下整体省略
type Confirmation struct {
	Confirmed   bool   `json:"confirmed"`
	BlockNumber uint64 `json:"blockNumber"`
	BlockHash   string `json:"blockHash"`
	GasUsed     uint64 `json:"gasUsed"`
	Status      uint64 `json:"status"`
}

func confirmationOf(sub *contract.Submission) *Confirmation {
	if sub == nil || !sub.Confirmed {
		return nil
	}
	return &Confirmation{
		Confirmed:   true,
		BlockNumber: sub.BlockNumber,
		BlockHash:   sub.BlockHash.Hex(),
		GasUsed:     sub.GasUsed,
		Status:      sub.Status,
	}
}

type CreateSessionResult struct {
	Success         bool   `json:"success"`
	TransactionHash string `json:"transactionHash"`
	SessionCode     string `json:"sessionCode"`
	ClassID         string `json:"classId"`
	DurationMinutes uint64 `json:"durationMinutes"`
	*Confirmation
}

type MarkAttendanceResult struct {
	Success         bool   `json:"success"`
	TransactionHash string `json:"transactionHash"`
	SessionCode     string `json:"sessionCode"`
	StudentID       string `json:"studentId"`
	ClassID         string `json:"classId"`
	*Confirmation
}

type AuthorizeTeacherResult struct {
	Success         bool   `json:"success"`
	TransactionHash string `json:"transactionHash"`
	TeacherAddress  string `json:"teacherAddress"`
	*Confirmation
}

type RegisterStudentResult struct {
	Success         bool   `json:"success"`
	TransactionHash string `json:"transactionHash"`
	StudentID       string `json:"studentId"`
	StudentAddress  string `json:"studentAddress"`
	*Confirmation
}

type SessionValidityResult struct {
	Success     bool   `json:"success"`
	SessionCode string `json:"sessionCode"`
	IsValid     bool   `json:"isValid"`
}

type HasAttendedResult struct {
	Success     bool   `json:"success"`
	SessionCode string `json:"sessionCode"`
	StudentID   string `json:"studentId"`
	HasAttended bool   `json:"hasAttended"`
}

type RecordResult struct {
	Success bool       `json:"success"`
	Record  RecordView `json:"record"`
}

type TotalRecordsResult struct {
	Success      bool        `json:"success"`
	TotalRecords json.Number `json:"totalRecords"`
}

type RecordByIndexResult struct {
	Success bool        `json:"success"`
	Index   json.Number `json:"index"`
	Record  RecordView  `json:"record"`
}

// RecordView 考勤记录的 JSON 形式，整数以普通 JSON 数字输出
type RecordView struct {
	SessionCode    string      `json:"sessionCode"`
	ClassID        string      `json:"classId"`
	StudentID      string      `json:"studentId"`
	StudentAddress string      `json:"studentAddress"`
	Timestamp      json.Number `json:"timestamp"`
	Verified       bool        `json:"verified"`
}

func recordView(r *contract.Record) RecordView {
	return RecordView{
		SessionCode:    r.SessionCode,
		ClassID:        r.ClassId,
		StudentID:      r.StudentId,
		StudentAddress: r.StudentAddress.Hex(),
		Timestamp:      number(r.Timestamp),
		Verified:       r.Verified,
	}
}

// number 大整数转为 JSON 数字（不加引号）
func number(n *big.Int) json.Number {
	if n == nil {
		return json.Number("0")
	}
	return json.Number(n.String())
}
