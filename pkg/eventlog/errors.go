package eventlog

import (
	"errors"
	"strings"
)

type ErrInvalidTopic struct {
	Topic string
}

func (e *ErrInvalidTopic) Error() string {
	return "invalid topic: " + e.Topic
}

func IsInvalidTopic(err error) bool {
	var target *ErrInvalidTopic
	return errors.As(err, &target)
}

// ErrClosed is returned by operations on a closed log.
var ErrClosed = errors.New("event log is closed")

func validateTopic(topic string) error {
	if strings.TrimSpace(topic) == "" || len(topic) > 128 {
		return &ErrInvalidTopic{Topic: topic}
	}
	return nil
}
