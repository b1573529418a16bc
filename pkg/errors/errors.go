package errors

import "errors"

// ErrStaleWrite 写入冲突：目标行在读取后被其他操作删除或改写
var ErrStaleWrite = errors.New("数据已被其他操作修改，请刷新后重试")
