// Package reporter provides the default observability collaborator.
package reporter

import (
	"context"

	logger "github.com/sirupsen/logrus"
)

// LogrusReporter reports refresh errors and configuration anomalies through
// the process log.
type LogrusReporter struct{}

// New creates a logrus-backed reporter.
func New() *LogrusReporter {
	return &LogrusReporter{}
}

// RecordError captures a collaborator failure that aborted a group refresh.
func (r *LogrusReporter) RecordError(_ context.Context, groupName string, err error) {
	logger.WithField("group", groupName).Errorf("refresh failed: %v", err)
}

// RecordAnomaly captures a recovered configuration anomaly.
func (r *LogrusReporter) RecordAnomaly(_ context.Context, kind, message string) {
	logger.WithField("kind", kind).Warn(message)
}
