// Package tlsutil 提供集中式 TLS 配置，
// 为访问托管生成 API 的 HTTP 客户端提供安全加固的 TLS 设置（TLS 1.2+，仅 AEAD 密码套件），
// 并在跨主机重定向时剥离 API Key 请求头。
package tlsutil
