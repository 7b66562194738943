package validate

import (
	"testing"

	"github.com/ggeorgiev0/backend-base/modules/kit/errx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addressDto struct {
	City string `json:"city" validate:"required"`
	Zip  string `json:"zip" validate:"required,min=4"`
}

type createDto struct {
	Email   string      `json:"email" validate:"required,email"`
	Name    string      `json:"name" validate:"required,min=2"`
	Age     int         `json:"age" validate:"omitempty,min=0,max=150"`
	Address *addressDto `json:"address" validate:"omitempty"`
}

func mustValidationError(t *testing.T, err error) *errx.Error {
	t.Helper()
	require.Error(t, err)
	de, ok := errx.AsError(err)
	require.True(t, ok, "期望领域校验错误，got=%T", err)
	require.Equal(t, errx.KindValidationFailed, de.Kind())
	require.NotEmpty(t, de.FieldErrors())
	return de
}

func TestBind_合法输入通过(t *testing.T) {
	p := NewPipe(DefaultOptions())
	var dto createDto
	err := p.Bind([]byte(`{"email":"a@b.com","name":"alice","age":30}`), &dto)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", dto.Email)
	assert.Equal(t, 30, dto.Age)
}

func TestBind_聚合全部失败字段_不是只报第一个(t *testing.T) {
	p := NewPipe(DefaultOptions())
	var dto createDto
	err := p.Bind([]byte(`{"email":"not-an-email","name":"a","age":200}`), &dto)

	de := mustValidationError(t, err)
	fields := de.FieldErrors()
	require.Len(t, fields, 3)
	assert.Contains(t, fields["email"][0], "valid email")
	assert.Contains(t, fields["name"][0], "at least 2")
	assert.Contains(t, fields["age"][0], "at most 150")
	assert.Equal(t, "Validation failed", de.Msg())
}

func TestBind_嵌套字段路径点号拼接(t *testing.T) {
	p := NewPipe(DefaultOptions())
	var dto createDto
	err := p.Bind([]byte(`{"email":"a@b.com","name":"alice","address":{"city":"","zip":"1"}}`), &dto)

	de := mustValidationError(t, err)
	fields := de.FieldErrors()
	assert.Contains(t, fields, "address.city")
	assert.Contains(t, fields, "address.zip")
}

func TestBind_Transform类型强转(t *testing.T) {
	p := NewPipe(DefaultOptions())
	var dto createDto
	err := p.Bind([]byte(`{"email":"a@b.com","name":"alice","age":"42"}`), &dto)
	require.NoError(t, err)
	assert.Equal(t, 42, dto.Age)

	// 关掉 Transform："42" 解不进 int，必须报校验错误而不是内部错误
	p = NewPipe(Options{Whitelist: true})
	var dto2 createDto
	err = p.Bind([]byte(`{"email":"a@b.com","name":"alice","age":"42"}`), &dto2)
	mustValidationError(t, err)
}

func TestBind_白名单丢弃未知字段(t *testing.T) {
	p := NewPipe(Options{Transform: true, Whitelist: true})
	var dto createDto
	err := p.Bind([]byte(`{"email":"a@b.com","name":"alice","hacker":"x"}`), &dto)
	require.NoError(t, err)
}

func TestBind_ForbidNonWhitelisted未知字段报错(t *testing.T) {
	p := NewPipe(DefaultOptions())
	var dto createDto
	err := p.Bind([]byte(`{"email":"a@b.com","name":"alice","hacker":"x","extra":1}`), &dto)

	de := mustValidationError(t, err)
	fields := de.FieldErrors()
	assert.Contains(t, fields, "hacker")
	assert.Contains(t, fields, "extra")
	assert.Contains(t, fields["hacker"][0], "should not exist")
}

func TestBind_原生标量目标是noop(t *testing.T) {
	p := NewPipe(DefaultOptions())

	var s string
	require.NoError(t, p.Bind([]byte(`{"x":1}`), &s))
	assert.Equal(t, "", s)

	var n int
	require.NoError(t, p.Bind([]byte(`{"x":1}`), &n))
	assert.Equal(t, 0, n)
}

func TestBind_嵌套对象的未知字段同样被拒绝(t *testing.T) {
	p := NewPipe(DefaultOptions())
	var dto createDto
	err := p.Bind([]byte(`{"email":"a@b.com","name":"alice","address":{"city":"X","zip":"1234","planet":"mars"}}`), &dto)

	de := mustValidationError(t, err)
	fields := de.FieldErrors()
	require.Contains(t, fields, "address.planet")
	assert.Contains(t, fields["address.planet"][0], "should not exist")
}

func TestBind_白名单下钻剥除嵌套未知字段(t *testing.T) {
	p := NewPipe(Options{Transform: true, Whitelist: true})
	var dto createDto
	err := p.Bind([]byte(`{"email":"a@b.com","name":"alice","address":{"city":"X","zip":"1234","planet":"mars"}}`), &dto)
	require.NoError(t, err)
	require.NotNil(t, dto.Address)
	assert.Equal(t, "X", dto.Address.City)
}

func TestBind_ForbidUnknownValues_无可校验形状拒绝(t *testing.T) {
	type bare struct{}
	p := NewPipe(DefaultOptions())
	var dto bare
	err := p.Bind([]byte(`{"x":1}`), &dto)
	mustValidationError(t, err)
}

func TestBind_noop场景(t *testing.T) {
	p := NewPipe(DefaultOptions())
	var dto createDto
	// 目标为 nil / 空输入 / 非对象原始值 都是 no-op
	require.NoError(t, p.Bind([]byte(`{"email":"x"}`), nil))
	require.NoError(t, p.Bind(nil, &dto))
	require.NoError(t, p.Bind([]byte(`42`), &dto))
	require.NoError(t, p.Bind([]byte(`"scalar"`), &dto))
}

func TestBind_畸形JSON包成校验错误(t *testing.T) {
	p := NewPipe(DefaultOptions())
	var dto createDto
	err := p.Bind([]byte(`{"email":`), &dto)

	de := mustValidationError(t, err)
	assert.Contains(t, de.FieldErrors()["body"][0], "malformed JSON")
}
