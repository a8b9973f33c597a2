package actions

import (
	"bytes"
	"encoding/json"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"

	"github.com/weisyn/attendance-cli/client/core/apperrors"
)

// Payload action 的 JSON 对象参数，字段值保持原始 JSON 以便区分数字和字符串
type Payload map[string]json.RawMessage

// ParsePayload 解析命令行传入的 JSON 参数
//
// 空白输入视为空对象；其它非对象输入返回 ValidationError。
func ParsePayload(op, raw string) (Payload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Payload{}, nil
	}
	if !strings.HasPrefix(raw, "{") {
		return nil, apperrors.Validation(op, "payload must be a JSON object")
	}

	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, apperrors.Validation(op, "payload is not valid JSON: %v", err)
	}
	if p == nil {
		p = Payload{}
	}
	return p, nil
}

// require 检查必填字段，一次性报告全部缺失字段
func (p Payload) require(op string, names ...string) error {
	missing := lo.Filter(names, func(name string, _ int) bool {
		return p.blank(name)
	})
	if len(missing) > 0 {
		return apperrors.MissingFields(op, missing...)
	}
	return nil
}

// blank 字段缺失、为 null 或为空白字符串
func (p Payload) blank(name string) bool {
	raw := bytes.TrimSpace(p[name])
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return true
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// str 读取字符串字段，数字按字面值转为字符串
func (p Payload) str(op, name string) (string, error) {
	raw := bytes.TrimSpace(p[name])

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		return n.String(), nil
	}
	return "", apperrors.Validation(op, "field %s must be a string", name)
}

// strs 按顺序读取多个字符串字段
func (p Payload) strs(op string, names ...string) ([]string, error) {
	values := make([]string, 0, len(names))
	for _, name := range names {
		v, err := p.str(op, name)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// uint256 读取非负整数字段，接受 JSON 数字或数字字符串
func (p Payload) uint256(op, name string) (*big.Int, error) {
	raw := bytes.TrimSpace(p[name])
	text := string(raw)
	if bytes.HasPrefix(raw, []byte(`"`)) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, apperrors.Validation(op, "field %s must be a non-negative integer", name)
		}
		text = strings.TrimSpace(s)
	}

	n, ok := new(big.Int).SetString(text, 10)
	if !ok || n.Sign() < 0 {
		return nil, apperrors.Validation(op, "field %s must be a non-negative integer, got %s", name, raw)
	}
	if n.BitLen() > 256 {
		return nil, apperrors.Validation(op, "field %s exceeds uint256", name)
	}
	return n, nil
}

// address 读取十六进制地址字段
func (p Payload) address(op, name string) (common.Address, error) {
	s, err := p.str(op, name)
	if err != nil {
		return common.Address{}, err
	}
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, apperrors.Validation(op, "field %s is not a valid address: %q", name, s)
	}
	return common.HexToAddress(s), nil
}
