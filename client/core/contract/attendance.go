// Package contract binds the attendance-tracking contract deployed on an EVM chain.
//
// 对外只暴露 Attendance 接口，action 层不关心底层是 ethclient 还是测试替身。
package contract

import (
	"context"
	_ "embed"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// 合约方法名
const (
	MethodCreateSession       = "createSession"
	MethodMarkAttendance      = "markAttendance"
	MethodIsSessionValid      = "isSessionValid"
	MethodHasAttended         = "hasAttended"
	MethodGetAttendanceRecord = "getAttendanceRecord"
	MethodGetTotalRecords     = "getTotalRecords"
	MethodGetRecordByIndex    = "getRecordByIndex"
	MethodAuthorizeTeacher    = "authorizeTeacher"
	MethodRegisterStudent     = "registerStudent"
)

//go:embed attendance.abi.json
var attendanceABIJSON string

var parsedABI = sync.OnceValues(func() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(attendanceABIJSON))
})

// ABI 返回解析后的合约 ABI（只解析一次）
func ABI() (abi.ABI, error) {
	return parsedABI()
}

// Record 链上考勤记录
//
// 字段名与 ABI 元组组件一一对应，abi.ConvertType 依赖这一点。
type Record struct {
	SessionCode    string
	ClassId        string
	StudentId      string
	StudentAddress common.Address
	Timestamp      *big.Int
	Verified       bool
}

// Submission 写操作结果
//
// submit 模式下只有 TxHash 有值；wait 模式下 Confirmed 为 true 并带回执信息。
type Submission struct {
	TxHash      common.Hash
	Confirmed   bool
	BlockNumber uint64
	BlockHash   common.Hash
	GasUsed     uint64
	Status      uint64
}

// Attendance 考勤合约的全部远程操作
type Attendance interface {
	CreateSession(ctx context.Context, sessionCode, classID string, durationMinutes uint64) (*Submission, error)
	MarkAttendance(ctx context.Context, sessionCode, studentID, classID string) (*Submission, error)
	AuthorizeTeacher(ctx context.Context, teacher common.Address) (*Submission, error)
	RegisterStudent(ctx context.Context, studentID string, student common.Address) (*Submission, error)

	IsSessionValid(ctx context.Context, sessionCode string) (bool, error)
	HasAttended(ctx context.Context, sessionCode, studentID string) (bool, error)
	GetAttendanceRecord(ctx context.Context, sessionCode, studentID string) (*Record, error)
	GetTotalRecords(ctx context.Context) (*big.Int, error)
	GetRecordByIndex(ctx context.Context, index *big.Int) (*Record, error)
}
