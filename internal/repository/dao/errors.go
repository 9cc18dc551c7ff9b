package dao

import "errors"

// ErrInvalidArgument 参数非法（分页越界、缺少必填字段等），上层映射为校验错误
var ErrInvalidArgument = errors.New("invalid argument")
