package service

import (
	"context"
	"errors"
	"fmt"

	"go-adminstats/internal/repository/dao"
)

type ErrorKind string

const (
	KindValidation       ErrorKind = "validation"
	KindAuth             ErrorKind = "auth"
	KindStoreUnavailable ErrorKind = "store_unavailable"
	KindDeadlineExceeded ErrorKind = "deadline_exceeded"
)

// Error 带分类的业务错误。StoreUnavailable 与 DeadlineExceeded 对调用方等价，
// 仅用于区分“存储故障”和“存储过慢”。
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// ValidationErrorf 构造校验错误
func ValidationErrorf(op, format string, args ...interface{}) *Error {
	return newError(KindValidation, op, fmt.Errorf(format, args...))
}

// KindOf 返回 err 链上第一个 *Error 的分类；非 *Error 返回空串
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool { return err != nil && KindOf(err) == kind }

// classify 将存储层错误归类；ctx 用于判断整体截止时间是否已到
func classify(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	switch {
	case errors.Is(err, dao.ErrInvalidArgument):
		return newError(KindValidation, op, err)
	case errors.Is(err, context.DeadlineExceeded), ctx != nil && errors.Is(ctx.Err(), context.DeadlineExceeded):
		return newError(KindDeadlineExceeded, op, err)
	default:
		return newError(KindStoreUnavailable, op, err)
	}
}
