package sink

import (
	"github.com/gofrs/flock"

	"github.com/okian/vidmatch/pkg/logger"
)

// NewWithFile builds a sink over an already open file so tests can
// control how writes fail.
func NewWithFile(path string, f appendFile) *JSONLSink {
	return &JSONLSink{
		path: path,
		mode: defaultFileMode,
		file: f,
		lock: flock.New(path + ".lock"),
		log:  logger.Get().Named("sink"),
	}
}
