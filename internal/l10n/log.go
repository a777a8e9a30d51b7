package l10n

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogFunc receives structured log events. msg holds {name} placeholders
// filled from params.
type LogFunc func(level logrus.Level, action string, params logrus.Fields, msg string)

// LogrusFunc is the default LogFunc, writing through the standard logrus logger
func LogrusFunc(level logrus.Level, action string, params logrus.Fields, msg string) {
	logrus.WithFields(params).WithField("action", action).Log(level, FormatMessage(msg, params))
}

// FormatMessage replaces {name} in msg with the matching param
func FormatMessage(msg string, params logrus.Fields) string {
	pairs := make([]string, 0, 2*len(params))
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}
