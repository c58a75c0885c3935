package main

import (
	"os"

	"github.com/loykin/apifetch/internal/common"
	"github.com/loykin/apifetch/internal/request"
)

// ExitHandler provides a testable way to handle program termination
type ExitHandler interface {
	Exit(code int)
	LogFatalError(err error, msg string, keyvals ...any)
}

// DefaultExitHandler implements ExitHandler for production use
type DefaultExitHandler struct {
	logger *common.Logger
}

func NewDefaultExitHandler() *DefaultExitHandler {
	return &DefaultExitHandler{logger: common.GetLogger().WithComponent("main")}
}

func (h *DefaultExitHandler) Exit(code int) {
	os.Exit(code)
}

// LogFatalError logs err, tagged with its request kind when it has one, and
// exits with ExitCode(err).
func (h *DefaultExitHandler) LogFatalError(err error, msg string, keyvals ...any) {
	allKeyvals := append([]any{"error", err}, keyvals...)
	if k := request.KindOf(err); k != 0 {
		allKeyvals = append(allKeyvals, "kind", k.String())
	}
	h.logger.Error(msg, allKeyvals...)
	h.Exit(ExitCode(err))
}

// ExitCode maps failures to exit statuses: 2 for calls that never reached
// the network, 3 for transport failures, 4 for bad responses, 1 otherwise.
func ExitCode(err error) int {
	switch request.KindOf(err) {
	case request.KindInvalidURL, request.KindEncoding:
		return 2
	case request.KindTransport, request.KindCancelled:
		return 3
	case request.KindEmptyBody, request.KindDecode, request.KindUnexpectedStatus:
		return 4
	default:
		return 1
	}
}

// Global exit handler (can be replaced for testing)
var exitHandler ExitHandler = NewDefaultExitHandler()
