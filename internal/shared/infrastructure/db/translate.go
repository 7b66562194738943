package db

import (
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/ggeorgiev0/backend-base/modules/kit/errx"
)

// MySQL 引擎错误码（识别的固定集合；未覆盖的引擎码统一按外部依赖故障处理）。
const (
	mysqlDuplicateEntry   = 1062
	mysqlCannotAddFK      = 1215
	mysqlFKParentMissing  = 1216
	mysqlFKChildExists    = 1217
	mysqlRowIsReferenced  = 1451
	mysqlNoReferencedRow  = 1452
	mysqlColumnCannotNull = 1048
	mysqlUnknownColumn    = 1054
	mysqlSyntaxError      = 1064
	mysqlTableNotExist    = 1146
	mysqlFieldNoDefault   = 1364
	mysqlIncorrectValue   = 1366
)

// Translate 把数据访问层冒出来的错误翻译成领域错误，
// 让分类器不需要任何数据库知识。识别不了的错误原样返回。
//
// 翻译时把引擎码、涉及的字段/表名、原始消息放进 context ——
// 这些只进日志，永远不会下发给客户端。
func Translate(err error) error {
	if err == nil {
		return nil
	}
	// 已经是领域错误：不重复翻译
	if _, ok := errx.AsError(err); ok {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errx.New(errx.KindResourceNotFound, "Record not found").WithCause(err)
	}

	var engineErr *gomysql.MySQLError
	if errors.As(err, &engineErr) {
		return translateEngine(engineErr, err)
	}

	if isClientValidation(err) {
		return errx.NewValidation("Invalid data provided", map[string][]string{
			"database": {err.Error()},
		}).WithContext("original_message", err.Error()).WithCause(err)
	}

	if isConnectionFailure(err) {
		return errx.New(errx.KindExternalServiceError, "Database connection failed").
			WithContext("original_message", err.Error()).
			WithCause(err)
	}

	// 不认识的错误签名：原样上抛，由上层的未知分支兜底
	return err
}

func translateEngine(engineErr *gomysql.MySQLError, cause error) error {
	withEngineContext := func(e *errx.Error) *errx.Error {
		e = e.WithContext("engine_code", int(engineErr.Number)).
			WithContext("original_message", engineErr.Message)
		if field := duplicateKeyField(engineErr.Message); field != "" {
			e = e.WithContext("fields", field)
		}
		if table := quotedName(engineErr.Message, "table"); table != "" {
			e = e.WithContext("table", table)
		}
		return e
	}

	switch engineErr.Number {
	case mysqlDuplicateEntry:
		return withEngineContext(
			errx.New(errx.KindResourceConflict, "Unique constraint violation"),
		).WithCause(cause)

	case mysqlCannotAddFK, mysqlFKParentMissing, mysqlFKChildExists,
		mysqlRowIsReferenced, mysqlNoReferencedRow:
		return withEngineContext(
			errx.New(errx.KindResourceConflict, "Foreign key constraint violation"),
		).WithCause(cause)

	case mysqlColumnCannotNull, mysqlUnknownColumn, mysqlSyntaxError,
		mysqlTableNotExist, mysqlFieldNoDefault, mysqlIncorrectValue:
		return withEngineContext(
			errx.NewValidation("Database query failed", map[string][]string{
				"database": {engineErr.Message},
			}),
		).WithCause(cause)

	default:
		return withEngineContext(
			errx.New(errx.KindExternalServiceError, "Database engine error"),
		).WithCause(cause)
	}
}

// isClientValidation 识别 gorm 客户端侧的数据问题（没到引擎就被拒）。
func isClientValidation(err error) bool {
	for _, sentinel := range []error{
		gorm.ErrInvalidData,
		gorm.ErrInvalidValue,
		gorm.ErrInvalidValueOfLength,
		gorm.ErrEmptySlice,
		gorm.ErrPrimaryKeyRequired,
		gorm.ErrMissingWhereClause,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func isConnectionFailure(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, gomysql.ErrInvalidConn) {
		return true
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

// duplicateKeyField 从 1062 的消息里抠出冲突字段名：
// "Duplicate entry 'a@b.com' for key 'users.uniq_email'" → "uniq_email" 的列部分。
func duplicateKeyField(msg string) string {
	const marker = "for key '"
	i := strings.Index(msg, marker)
	if i < 0 {
		return ""
	}
	rest := msg[i+len(marker):]
	j := strings.IndexByte(rest, '\'')
	if j < 0 {
		return ""
	}
	key := rest[:j]
	// key 可能带表前缀（users.email）
	if k := strings.LastIndexByte(key, '.'); k >= 0 {
		key = key[k+1:]
	}
	return strings.TrimPrefix(key, "uniq_")
}

// quotedName 从消息里取 "<label> 'xxx'" 形式的名字（尽力而为）。
func quotedName(msg, label string) string {
	marker := label + " '"
	i := strings.Index(strings.ToLower(msg), marker)
	if i < 0 {
		return ""
	}
	rest := msg[i+len(marker):]
	j := strings.IndexByte(rest, '\'')
	if j < 0 {
		return ""
	}
	return rest[:j]
}
