package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ggeorgiev0/backend-base/internal/shared/config"
)

var ErrSecretMissing = errors.New("jwt secret is not configured")

const defaultTTL = 7 * 24 * time.Hour

type Claims struct {
	UserID uint `json:"uid"`
	jwt.RegisteredClaims
}

// Manager 签发和验证访问令牌。secret 启动时注入一次，运行期不可变。
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(cfg config.JWTConfig) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, ErrSecretMissing
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Manager{secret: []byte(cfg.Secret), ttl: ttl}, nil
}

// Issue 为用户签发 HS256 令牌。
func (m *Manager) Issue(userID uint) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse 解析并验证令牌。过期/无效的区分交给调用方用 errors.Is 判断
// （jwt.ErrTokenExpired 等哨兵错误）。
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if token == nil || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
