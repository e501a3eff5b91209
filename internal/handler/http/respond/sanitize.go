package respond

import "regexp"

// 外部ソース呼び出しのエラーには認証情報が混入しうるため、
// クライアントへ返す前にマスクする。
type redaction struct {
	pattern *regexp.Regexp
	mask    string
}

var redactions = []redaction{
	// NewsAPI のキーはクエリパラメータまたはヘッダーで渡される16進文字列
	{regexp.MustCompile(`(?i)(apiKey=)[a-f0-9]{16,}`), "${1}****"},
	{regexp.MustCompile(`(?i)(X-Api-Key: ?)[a-f0-9]{16,}`), "${1}****"},
	// DSN 内のデータベースパスワード
	{regexp.MustCompile(`://([^:/]+):([^@]+)@`), "://${1}:****@"},
}

// SanitizeError は機密情報をマスクしたエラーメッセージを返す
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, r := range redactions {
		msg = r.pattern.ReplaceAllString(msg, r.mask)
	}
	return msg
}
