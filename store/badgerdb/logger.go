package badgerdb

import (
	"fmt"
	"strings"

	"github.com/tendermint/tendermint/libs/log"
)

// badgerLogger forwards badger internal messages to the application logger.
type badgerLogger struct {
	logger log.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(msg(format, args))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Info(msg(format, args), "level", "warning")
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(msg(format, args))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(msg(format, args))
}

func msg(format string, args []interface{}) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}
