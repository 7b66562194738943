package db

import (
	"database/sql/driver"
	"errors"
	"net"
	"testing"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/ggeorgiev0/backend-base/modules/kit/errx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDomain(t *testing.T, err error) *errx.Error {
	t.Helper()
	de, ok := errx.AsError(err)
	require.True(t, ok, "期望翻译成领域错误，got=%T %v", err, err)
	return de
}

func TestTranslate_唯一约束冲突(t *testing.T) {
	cause := &gomysql.MySQLError{
		Number:  1062,
		Message: "Duplicate entry 'a@b.com' for key 'users.email'",
	}

	de := mustDomain(t, Translate(cause))
	assert.Equal(t, errx.KindResourceConflict, de.Kind())
	assert.Equal(t, 409, de.Status())
	ctx := de.Context()
	assert.Equal(t, 1062, ctx["engine_code"])
	assert.Equal(t, "email", ctx["fields"])
	assert.Contains(t, ctx["original_message"], "Duplicate entry")
	// cause 链保留，供日志溯源
	var me *gomysql.MySQLError
	assert.True(t, errors.As(de, &me))
}

func TestTranslate_记录不存在(t *testing.T) {
	de := mustDomain(t, Translate(gorm.ErrRecordNotFound))
	assert.Equal(t, errx.KindResourceNotFound, de.Kind())
	assert.Equal(t, 404, de.Status())
}

func TestTranslate_外键约束冲突(t *testing.T) {
	for _, code := range []uint16{1216, 1217, 1451, 1452} {
		cause := &gomysql.MySQLError{Number: code, Message: "fk violated"}
		de := mustDomain(t, Translate(cause))
		assert.Equal(t, errx.KindResourceConflict, de.Kind(), "code=%d", code)
	}
}

func TestTranslate_查询与schema错误归为校验错误(t *testing.T) {
	for _, code := range []uint16{1048, 1054, 1064, 1146, 1364, 1366} {
		cause := &gomysql.MySQLError{Number: code, Message: "bad query"}
		de := mustDomain(t, Translate(cause))
		assert.Equal(t, errx.KindValidationFailed, de.Kind(), "code=%d", code)
		assert.Equal(t, 400, de.Status(), "code=%d", code)
		require.Contains(t, de.FieldErrors(), "database", "code=%d", code)
	}
}

func TestTranslate_其他引擎码按外部依赖故障(t *testing.T) {
	cause := &gomysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}
	de := mustDomain(t, Translate(cause))
	assert.Equal(t, errx.KindExternalServiceError, de.Kind())
	assert.Equal(t, 503, de.Status())
}

func TestTranslate_客户端侧数据问题(t *testing.T) {
	de := mustDomain(t, Translate(gorm.ErrInvalidData))
	assert.Equal(t, errx.KindValidationFailed, de.Kind())
	assert.Equal(t, "Invalid data provided", de.Msg())
	require.Contains(t, de.FieldErrors(), "database")
}

func TestTranslate_连接失败(t *testing.T) {
	for _, cause := range []error{
		driver.ErrBadConn,
		gomysql.ErrInvalidConn,
		&net.OpError{Op: "dial", Err: errors.New("connection refused")},
	} {
		de := mustDomain(t, Translate(cause))
		assert.Equal(t, errx.KindExternalServiceError, de.Kind(), "cause=%v", cause)
		assert.Equal(t, "Database connection failed", de.Msg())
	}
}

func TestTranslate_不认识的错误原样返回(t *testing.T) {
	plain := errors.New("something else")
	assert.Equal(t, plain, Translate(plain))
	assert.NoError(t, Translate(nil))
}

func TestTranslate_已是领域错误不重复翻译(t *testing.T) {
	orig := errx.New(errx.KindResourceNotFound, "User not found")
	assert.Equal(t, error(orig), Translate(orig))
}

func TestDuplicateKeyField_解析(t *testing.T) {
	cases := map[string]string{
		"Duplicate entry 'x' for key 'users.email'": "email",
		"Duplicate entry 'x' for key 'uniq_email'":  "email",
		"Duplicate entry 'x' for key 'PRIMARY'":     "PRIMARY",
		"no key here":                               "",
	}
	for msg, want := range cases {
		assert.Equal(t, want, duplicateKeyField(msg), "msg=%q", msg)
	}
}
