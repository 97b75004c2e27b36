// Package version хранит данные сборки, проставляемые через -ldflags:
//
//	-X github.com/DarshanM12/student-ecommerce/internal/version.version=v1.2.3
package version

import "fmt"

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Info возвращает версию, коммит и дату сборки.
func Info() (v, c, d string) { return version, commit, date }

func GetVersion() string { return version }

func GetCommit() string { return commit }

func GetDate() string { return date }

// String форматирует данные сборки одной строкой для логов и `storefront version`.
func String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", version, commit, date)
}
