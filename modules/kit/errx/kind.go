package errx

import "net/http"

// Kind 表示领域错误的封闭枚举（对外语义的稳定标识）。
//
// 约束：
// - Kind → (code, status) 的映射是全量且运行期不可变的
// - 错误码格式：E{2位大类}{3位细分}，大类含义见下方分组注释
type Kind uint8

const (
	// 01 参数/校验类
	KindValidationFailed Kind = iota
	KindInvalidInput
	KindInvalidFormat

	// 02 认证类
	KindUnauthorized
	KindInvalidCredentials
	KindSessionExpired
	KindInvalidToken

	// 03 授权类
	KindForbidden
	KindInsufficientPermissions

	// 04 资源类
	KindResourceNotFound
	KindResourceAlreadyExists
	KindResourceConflict

	// 05 业务规则类
	KindBusinessRuleViolation
	KindInvalidState
	KindOperationNotAllowed

	// 06 外部依赖类
	KindExternalServiceError
	KindExternalServiceTimeout
	KindExternalServiceUnavailable

	// 07 服务自身类
	KindInternalServerError
	KindNotImplemented
	KindServiceUnavailable
)

type kindInfo struct {
	name   string
	code   string
	status int
}

var kindTable = [...]kindInfo{
	KindValidationFailed:           {"VALIDATION_FAILED", "E01001", http.StatusBadRequest},
	KindInvalidInput:               {"INVALID_INPUT", "E01002", http.StatusBadRequest},
	KindInvalidFormat:              {"INVALID_FORMAT", "E01003", http.StatusBadRequest},
	KindUnauthorized:               {"UNAUTHORIZED", "E02001", http.StatusUnauthorized},
	KindInvalidCredentials:         {"INVALID_CREDENTIALS", "E02002", http.StatusUnauthorized},
	KindSessionExpired:             {"SESSION_EXPIRED", "E02003", http.StatusUnauthorized},
	KindInvalidToken:               {"INVALID_TOKEN", "E02004", http.StatusUnauthorized},
	KindForbidden:                  {"FORBIDDEN", "E03001", http.StatusForbidden},
	KindInsufficientPermissions:    {"INSUFFICIENT_PERMISSIONS", "E03002", http.StatusForbidden},
	KindResourceNotFound:           {"RESOURCE_NOT_FOUND", "E04001", http.StatusNotFound},
	KindResourceAlreadyExists:      {"RESOURCE_ALREADY_EXISTS", "E04002", http.StatusConflict},
	KindResourceConflict:           {"RESOURCE_CONFLICT", "E04003", http.StatusConflict},
	KindBusinessRuleViolation:      {"BUSINESS_RULE_VIOLATION", "E05001", http.StatusUnprocessableEntity},
	KindInvalidState:               {"INVALID_STATE", "E05002", http.StatusConflict},
	KindOperationNotAllowed:        {"OPERATION_NOT_ALLOWED", "E05003", http.StatusForbidden},
	KindExternalServiceError:       {"EXTERNAL_SERVICE_ERROR", "E06001", http.StatusServiceUnavailable},
	KindExternalServiceTimeout:     {"EXTERNAL_SERVICE_TIMEOUT", "E06002", http.StatusGatewayTimeout},
	KindExternalServiceUnavailable: {"EXTERNAL_SERVICE_UNAVAILABLE", "E06003", http.StatusServiceUnavailable},
	KindInternalServerError:        {"INTERNAL_SERVER_ERROR", "E07001", http.StatusInternalServerError},
	KindNotImplemented:             {"NOT_IMPLEMENTED", "E07002", http.StatusNotImplemented},
	KindServiceUnavailable:         {"SERVICE_UNAVAILABLE", "E07003", http.StatusServiceUnavailable},
}

func (k Kind) valid() bool {
	return int(k) < len(kindTable)
}

// String 返回 Kind 的稳定名称；非法值返回 INTERNAL_SERVER_ERROR 对应名称（兜底）。
func (k Kind) String() string {
	if !k.valid() {
		return kindTable[KindInternalServerError].name
	}
	return kindTable[k].name
}

// Code 返回 Kind 对应的对外错误码（E#####）。
func (k Kind) Code() string {
	if !k.valid() {
		return kindTable[KindInternalServerError].code
	}
	return kindTable[k].code
}

// Status 返回 Kind 对应的默认 HTTP 状态码。
func (k Kind) Status() int {
	if !k.valid() {
		return kindTable[KindInternalServerError].status
	}
	return kindTable[k].status
}

// KindFromStatus 把通用 HTTP 状态码归一化成 Kind。
// 用于“框架类错误只带 status 不带领域语义”的场景；未覆盖的状态码一律兜底到
// KindInternalServerError。
func KindFromStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest:
		return KindInvalidInput
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindResourceNotFound
	case http.StatusMethodNotAllowed:
		return KindOperationNotAllowed
	case http.StatusRequestTimeout:
		return KindExternalServiceTimeout
	case http.StatusConflict:
		return KindResourceConflict
	case http.StatusUnprocessableEntity:
		return KindBusinessRuleViolation
	case http.StatusInternalServerError:
		return KindInternalServerError
	case http.StatusNotImplemented:
		return KindNotImplemented
	case http.StatusBadGateway:
		return KindExternalServiceError
	case http.StatusServiceUnavailable:
		return KindServiceUnavailable
	case http.StatusGatewayTimeout:
		return KindExternalServiceTimeout
	default:
		return KindInternalServerError
	}
}
