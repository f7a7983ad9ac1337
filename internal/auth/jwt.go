package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/components/logging"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/consts"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/core"
	bizConsts "github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/consts"
)

type ctxKey string

const ownerKey ctxKey = "owner_id"

const defaultTokenTTL = 24 * time.Hour

// WithOwner 把经过认证的 owner 写入 context。导出供 handler 测试使用。
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey, ownerID)
}

// OwnerID returns the authenticated owner for this request, if any.
func OwnerID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ownerKey).(string)
	return v, ok && v != ""
}

// AuthComponent 校验 Bearer JWT (HS256), 把 sub 声明作为 owner 注入请求 context。
// 身份只来自 token, 请求体或查询参数里的 owner 一律不可信。
type AuthComponent struct {
	*core.BaseComponent
	secret      []byte
	tokenTTL    time.Duration
	publicPaths map[string]struct{}
}

func NewAuthComponent(secret string, tokenTTL time.Duration, publicPaths []string) *AuthComponent {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	pp := make(map[string]struct{}, len(publicPaths))
	for _, p := range publicPaths {
		p = strings.TrimSpace(p)
		if p != "" {
			pp[p] = struct{}{}
		}
	}
	return &AuthComponent{
		BaseComponent: core.NewBaseComponent(bizConsts.COMP_MW_AUTH, consts.COMPONENT_LOGGING),
		secret:        []byte(secret),
		tokenTTL:      tokenTTL,
		publicPaths:   pp,
	}
}

func (a *AuthComponent) Start(ctx context.Context) error {
	if err := a.BaseComponent.Start(ctx); err != nil {
		return err
	}
	if len(a.secret) == 0 {
		return fmt.Errorf("jwt_auth: auth.secret not configured")
	}
	return nil
}

func (a *AuthComponent) Stop(ctx context.Context) error {
	return a.BaseComponent.Stop(ctx)
}

// Middleware 认证中间件。公共路径直接放行, 其余请求必须带合法 Bearer token。
func (a *AuthComponent) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, open := a.publicPaths[r.URL.Path]; open {
				next.ServeHTTP(w, r)
				return
			}
			raw := bearerToken(r)
			if raw == "" {
				writeUnauthorized(w, "not authenticated")
				return
			}
			ownerID, err := a.Verify(raw)
			if err != nil {
				logging.Debug(r.Context(), "jwt verify failed", zap.Error(err))
				writeUnauthorized(w, "could not validate credentials")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), ownerID)))
		})
	}
}

// Verify parses and validates the token, returning the sub claim.
func (a *AuthComponent) Verify(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("token missing sub claim")
	}
	return sub, nil
}

// Mint 为某个 owner 签发一个 token, 主要给 SDK 与测试用。
func (a *AuthComponent) Mint(ownerID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": ownerID,
		"iat": now.Unix(),
		"exp": now.Add(a.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// 本地写 401, 避免与 api 包互相引用。
func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"error":%q,"code":"UNAUTHORIZED"}`, msg)
}
