package service

import "context"

type requestMetaKey struct{}

// RequestMeta HTTP 请求的来源信息,写入审计日志
type RequestMeta struct {
	RequestID string
	IP        string
	UserAgent string
}

// WithRequestMeta 将来源信息写入 context
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFrom 从 context 读取来源信息
func RequestMetaFrom(ctx context.Context) RequestMeta {
	if ctx == nil {
		return RequestMeta{}
	}
	meta, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta
}
