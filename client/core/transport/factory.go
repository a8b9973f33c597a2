package transport

import (
	"context"
	"net/url"
	"strings"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
)

var _ Node = (*ethclient.Client)(nil)

// supportedSchemes 支持的端点协议，空 scheme 视为本地 IPC 路径
var supportedSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ws":    true,
	"wss":   true,
	"":      true,
}

// Dial 根据端点地址建立连接（http/https/ws/wss/IPC）
func Dial(ctx context.Context, endpoint string) (Node, error) {
	endpoint = strings.TrimSpace(endpoint)
	if err := ValidateEndpoint(endpoint); err != nil {
		return nil, err
	}

	c, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", Redact(endpoint))
	}
	return ethclient.NewClient(c), nil
}

// ValidateEndpoint 校验端点格式
func ValidateEndpoint(endpoint string) error {
	if endpoint == "" {
		return errors.New("empty endpoint")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return errors.Wrap(err, "parse endpoint")
	}
	if !supportedSchemes[strings.ToLower(u.Scheme)] {
		return errors.Errorf("unsupported endpoint scheme %q", u.Scheme)
	}
	return nil
}

// Redact 去掉端点中的用户信息和查询参数（常用于携带 API key），用于日志输出
func Redact(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" {
		return endpoint
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
