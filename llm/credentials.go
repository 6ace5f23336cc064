package llm

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/BaSui01/logomotion/types"
)

type credentialOverrideKey struct{}

// CredentialOverride 用于在单次请求内覆盖 Provider 凭据。
// 注意：该结构仅通过 context 传递，不会从 API JSON 反序列化，避免前端直接注入敏感信息。
type CredentialOverride struct {
	APIKey    string
	SecretKey string
}

func (c CredentialOverride) String() string {
	if c.APIKey == "" && c.SecretKey == "" {
		return "CredentialOverride{}"
	}
	return "CredentialOverride{APIKey:***, SecretKey:***}"
}

func (c CredentialOverride) MarshalJSON() ([]byte, error) {
	type masked struct {
		APIKey    string `json:"api_key,omitempty"`
		SecretKey string `json:"secret_key,omitempty"`
	}
	out := masked{}
	if c.APIKey != "" {
		out.APIKey = "***"
	}
	if c.SecretKey != "" {
		out.SecretKey = "***"
	}
	return json.Marshal(out)
}

// WithCredentialOverride 在 ctx 中写入凭据覆盖信息。
// 传入空的 APIKey/SecretKey 不会改变 ctx。
func WithCredentialOverride(ctx context.Context, c CredentialOverride) context.Context {
	if c.APIKey == "" && c.SecretKey == "" {
		return ctx
	}
	return context.WithValue(ctx, credentialOverrideKey{}, c)
}

// CredentialOverrideFromContext 从 ctx 读取凭据覆盖信息。
func CredentialOverrideFromContext(ctx context.Context) (CredentialOverride, bool) {
	v := ctx.Value(credentialOverrideKey{})
	if v == nil {
		return CredentialOverride{}, false
	}
	c, ok := v.(CredentialOverride)
	return c, ok
}

// CredentialSource 提供当前选中的访问凭据。
type CredentialSource interface {
	// APIKey returns the selected key, or "" when none is selected.
	APIKey() string
}

// CredentialVerifier 在视频请求前确认凭据已选择。
type CredentialVerifier interface {
	HasSelectedKey(ctx context.Context) (bool, error)
}

// CredentialStore holds the single selected credential for the process.
// It satisfies both CredentialSource and CredentialVerifier.
type CredentialStore struct {
	mu  sync.RWMutex
	key string
}

// NewCredentialStore 创建凭据存储，initial 可以为空。
func NewCredentialStore(initial string) *CredentialStore {
	return &CredentialStore{key: strings.TrimSpace(initial)}
}

// APIKey implements CredentialSource.
func (s *CredentialStore) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key
}

// HasSelectedKey implements CredentialVerifier.
func (s *CredentialStore) HasSelectedKey(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.APIKey() != "", nil
}

// Select replaces the selected credential.
func (s *CredentialStore) Select(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return types.NewInvalidRequestError("api key must not be empty")
	}
	s.mu.Lock()
	s.key = key
	s.mu.Unlock()
	return nil
}

// Clear 清除已选择的凭据。
func (s *CredentialStore) Clear() {
	s.mu.Lock()
	s.key = ""
	s.mu.Unlock()
}

// String never reveals the key.
func (s *CredentialStore) String() string {
	if s.APIKey() == "" {
		return "CredentialStore{unselected}"
	}
	return "CredentialStore{APIKey:***}"
}
