//go:build !debug
// +build !debug

package lightpath

func DebugLog(format string, args ...interface{})     {}
func DebugLogOnce(format string, args ...interface{}) {}
