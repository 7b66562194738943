package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ggeorgiev0/backend-base/internal/realtime"
	"github.com/ggeorgiev0/backend-base/modules/kit/errx"
)

type fakeRepo struct {
	byID   map[uint]*User
	nextID uint

	createErr error
	listErr   error
	updateErr error
	deleteErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[uint]*User), nextID: 1}
}

func (r *fakeRepo) Create(ctx context.Context, user *User) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.byID {
		if existing.Email == user.Email {
			return errx.New(errx.KindResourceConflict, "Duplicate entry")
		}
	}
	user.ID = r.nextID
	r.nextID++
	cp := *user
	r.byID[user.ID] = &cp
	return nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id uint) (*User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, errx.New(errx.KindResourceNotFound, "Record not found")
	}
	cp := *u
	return &cp, nil
}

func (r *fakeRepo) List(ctx context.Context, offset, limit int) ([]User, int64, error) {
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	items := make([]User, 0, len(r.byID))
	for id := uint(1); id < r.nextID; id++ {
		if u, ok := r.byID[id]; ok {
			items = append(items, *u)
		}
	}
	total := int64(len(items))
	if offset >= len(items) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end], total, nil
}

func (r *fakeRepo) Update(ctx context.Context, user *User) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	cp := *user
	r.byID[user.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id uint) (bool, error) {
	if r.deleteErr != nil {
		return false, r.deleteErr
	}
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

type fakePublisher struct {
	events []string
}

func (p *fakePublisher) Publish(event string, payload any) {
	p.events = append(p.events, event)
}

func newTestService(repo *fakeRepo, pub *fakePublisher) *Service {
	return NewService(repo, pub,
		func(pwd, salt string) string { return salt + "#" + pwd },
		func(n int) string { return "fixedsalt" })
}

func TestService_创建用户会加盐并广播事件(t *testing.T) {
	repo := newFakeRepo()
	pub := &fakePublisher{}
	s := newTestService(repo, pub)

	view, err := s.Create(context.Background(), CreateUserDTO{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "supersecret",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(1), view.ID)
	assert.Equal(t, "alice@example.com", view.Email)

	stored := repo.byID[1]
	assert.Equal(t, "fixedsalt#supersecret", stored.Password)
	assert.Equal(t, "fixedsalt", stored.Salt)
	assert.Equal(t, []string{realtime.EventUserCreated}, pub.events)
}

func TestService_重复邮箱透传冲突错误且不广播(t *testing.T) {
	repo := newFakeRepo()
	pub := &fakePublisher{}
	s := newTestService(repo, pub)

	_, err := s.Create(context.Background(), CreateUserDTO{
		Email: "a@example.com", Name: "A", Password: "password1"})
	require.NoError(t, err)

	_, err = s.Create(context.Background(), CreateUserDTO{
		Email: "a@example.com", Name: "B", Password: "password2"})
	require.Error(t, err)
	domainErr, ok := errx.AsError(err)
	require.True(t, ok)
	assert.Equal(t, errx.KindResourceConflict, domainErr.Kind())
	assert.Len(t, pub.events, 1)
}

func TestService_查询缺失ID报UserNotFound(t *testing.T) {
	s := newTestService(newFakeRepo(), &fakePublisher{})

	_, err := s.Get(context.Background(), 42)
	require.Error(t, err)
	domainErr, ok := errx.AsError(err)
	require.True(t, ok)
	assert.Equal(t, errx.KindResourceNotFound, domainErr.Kind())
	assert.Equal(t, "User not found", domainErr.Msg())
	assert.Equal(t, uint(42), domainErr.Context()["user_id"])
}

func TestService_更新只动出现的字段(t *testing.T) {
	repo := newFakeRepo()
	pub := &fakePublisher{}
	s := newTestService(repo, pub)

	created, err := s.Create(context.Background(), CreateUserDTO{
		Email: "bob@example.com", Name: "Bob", Password: "password1"})
	require.NoError(t, err)

	newName := "Bobby"
	view, err := s.Update(context.Background(), created.ID, UpdateUserDTO{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Bobby", view.Name)
	assert.Equal(t, "bob@example.com", view.Email)
	// 密码字段未出现，哈希不变
	assert.Equal(t, "fixedsalt#password1", repo.byID[created.ID].Password)
	assert.Equal(t, []string{realtime.EventUserCreated, realtime.EventUserUpdated}, pub.events)
}

func TestService_删除不存在的用户报NotFound(t *testing.T) {
	pub := &fakePublisher{}
	s := newTestService(newFakeRepo(), pub)

	err := s.Delete(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrNotFound))
	assert.Empty(t, pub.events)
}

func TestService_删除成功广播deleted事件(t *testing.T) {
	repo := newFakeRepo()
	pub := &fakePublisher{}
	s := newTestService(repo, pub)

	created, err := s.Create(context.Background(), CreateUserDTO{
		Email: "c@example.com", Name: "C", Password: "password1"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(context.Background(), created.ID))
	assert.Equal(t, []string{realtime.EventUserCreated, realtime.EventUserDeleted}, pub.events)
}

func TestService_分页参数归一化(t *testing.T) {
	repo := newFakeRepo()
	s := newTestService(repo, &fakePublisher{})

	for i := 0; i < 3; i++ {
		_, err := s.Create(context.Background(), CreateUserDTO{
			Email:    string(rune('a'+i)) + "@example.com",
			Name:     "User",
			Password: "password1",
		})
		require.NoError(t, err)
	}

	result, err := s.List(context.Background(), ListQuery{Page: 0, PageSize: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 20, result.PageSize)
	assert.Equal(t, int64(3), result.Total)
	assert.Len(t, result.Items, 3)

	second, err := s.List(context.Background(), ListQuery{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, second.Items, 1)
	assert.Equal(t, int64(3), second.Total)
}
