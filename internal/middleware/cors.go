package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// NewCORSMiddleware はカンマ区切りの許可オリジン一覧からCORSミドルウェアを生成する。
// 一覧にないオリジンにはAccess-Control-Allow-Originを返さない。"*"はすべて許可する。
// APIは読み取り専用で認証情報も扱わないため、GETのみ許可しCredentialsは付与しない。
func NewCORSMiddleware(allowedOrigins string) func(next http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins:   ParseOrigins(allowedOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{"Retry-After", RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           86400,
	}
	// go-chi/corsは一覧が空だと全許可になる
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowOriginFunc = func(r *http.Request, origin string) bool { return false }
	}
	return cors.Handler(opts)
}

// ParseOrigins は設定値を空白と末尾スラッシュを除いたオリジン一覧に分解する。
func ParseOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
