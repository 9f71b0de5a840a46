package scrape

import "fmt"

// ErrorKind classifies scrape failures.
type ErrorKind string

const (
	// LoadTimeout 页面在限定时间内未加载完成
	LoadTimeout ErrorKind = "LoadTimeout"
	// AuthFailure 登录后仍停留在登录页
	AuthFailure ErrorKind = "AuthFailure"
	// ElementNotFound 限定时间内未出现目标元素
	ElementNotFound ErrorKind = "ElementNotFound"
	// StallExhausted 滚动停滞超出重试预算
	StallExhausted ErrorKind = "StallExhausted"
)

// Error reports why the scrape adapter could not produce usable content.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scrape %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("scrape %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }
