package api

import (
	"runtime/debug"

	"github.com/heroiclabs/nakama-common/runtime"
)

func Recovery(logger runtime.Logger) {
	if r := recover(); r != nil {
		logger.Error("Recovered. Error: %v\n Stack %s", r, string(debug.Stack()))
	}
}
