package users

import (
	"context"
	"errors"

	"github.com/ggeorgiev0/backend-base/internal/realtime"
	"github.com/ggeorgiev0/backend-base/modules/kit/errx"
)

// Repo 服务层依赖的仓储口子，测试时用内存实现替换。
type Repo interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	List(ctx context.Context, offset, limit int) ([]User, int64, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uint) (bool, error)
}

// Publisher 变更事件出口（realtime.Hub 实现）。
type Publisher interface {
	Publish(event string, payload any)
}

type PwdEncrypter func(pwd, salt string) string

type RandSeq func(n int) string

type Service struct {
	repo         Repo
	publisher    Publisher
	pwdEncrypter PwdEncrypter
	randSeq      RandSeq
}

func NewService(repo Repo, publisher Publisher, pwdEncrypter PwdEncrypter, randSeq RandSeq) *Service {
	return &Service{
		repo:         repo,
		publisher:    publisher,
		pwdEncrypter: pwdEncrypter,
		randSeq:      randSeq,
	}
}

func (s *Service) Create(ctx context.Context, dto CreateUserDTO) (*UserView, error) {
	salt := s.randSeq(16)
	user := &User{
		Email:    dto.Email,
		Name:     dto.Name,
		Password: s.pwdEncrypter(dto.Password, salt),
		Salt:     salt,
	}
	// 邮箱唯一约束冲突由翻译器转成 ResourceConflict，这里不提前查重，
	// 避免查重和写入之间的竞态窗口
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	view := viewOf(user)
	s.publish(realtime.EventUserCreated, view)
	return &view, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*UserView, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, errx.ErrNotFound) {
			return nil, errx.New(errx.KindResourceNotFound, "User not found").
				WithContext("user_id", id)
		}
		return nil, err
	}
	view := viewOf(user)
	return &view, nil
}

func (s *Service) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	query = query.normalize()
	offset := (query.Page - 1) * query.PageSize

	items, total, err := s.repo.List(ctx, offset, query.PageSize)
	if err != nil {
		return nil, err
	}

	views := make([]UserView, 0, len(items))
	for i := range items {
		views = append(views, viewOf(&items[i]))
	}
	return &ListResult{
		Items:    views,
		Total:    total,
		Page:     query.Page,
		PageSize: query.PageSize,
	}, nil
}

func (s *Service) Update(ctx context.Context, id uint, dto UpdateUserDTO) (*UserView, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, errx.ErrNotFound) {
			return nil, errx.New(errx.KindResourceNotFound, "User not found").
				WithContext("user_id", id)
		}
		return nil, err
	}

	if dto.Email != nil {
		user.Email = *dto.Email
	}
	if dto.Name != nil {
		user.Name = *dto.Name
	}
	if dto.Password != nil {
		salt := s.randSeq(16)
		user.Password = s.pwdEncrypter(*dto.Password, salt)
		user.Salt = salt
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	view := viewOf(user)
	s.publish(realtime.EventUserUpdated, view)
	return &view, nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return errx.New(errx.KindResourceNotFound, "User not found").
			WithContext("user_id", id)
	}
	s.publish(realtime.EventUserDeleted, map[string]any{"id": id})
	return nil
}

func (s *Service) publish(event string, payload any) {
	if s.publisher != nil {
		s.publisher.Publish(event, payload)
	}
}
