package port

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput はリクエストの入力値が不正であることを示します。
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidPagination is returned when page or page size is below 1 or the page lies past MaxResultWindow.
	ErrInvalidPagination = fmt.Errorf("%w: invalid pagination parameters", ErrInvalidInput)
	// ErrJobNotFound はレコメンド対象の求人が存在しないことを示します。
	ErrJobNotFound = fmt.Errorf("%w: no job found", ErrInvalidInput)
	// ErrUnauthenticated は呼び出し元を識別できないことを示します。
	ErrUnauthenticated = errors.New("authentication invalid")
	// ErrForbidden は呼び出し元にリソースへの権限がないことを示します。
	ErrForbidden = errors.New("not authorized to access this resource")
	// ErrNotFound はドキュメントストアにレコードが存在しないことを示します。
	ErrNotFound = errors.New("record not found")
)
